package models

import (
	"encoding/json"
	"time"
)

// OrderStatusCompleted is the only status an order ever carries.
const OrderStatusCompleted = "Completed"

// SaleLine is one product line within one order, flattened for analytics.
type SaleLine struct {
	ID           string  `json:"id"`
	OrderID      string  `json:"orderId"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"price"`
	Date         string  `json:"date"`
	CustomerName string  `json:"customerName"`
}

// Subtotal is UnitPrice × Quantity.
func (s SaleLine) Subtotal() float64 {
	return s.UnitPrice * float64(s.Quantity)
}

// Order is the projection of every SaleLine sharing one OrderID.
type Order struct {
	OrderID      string     `json:"orderId"`
	CustomerName string     `json:"customerName"`
	Date         string     `json:"date"`
	Total        float64    `json:"total"`
	Status       string     `json:"status"`
	Items        []SaleLine `json:"items"`
}

type OrderItemRequest struct {
	ProductID json.Number `json:"producto_id" binding:"required"`
	Quantity  int         `json:"cantidad" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Username string             `json:"usuario"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderLine is a resolved order line ready to be written.
type OrderLine struct {
	ProductID int
	Quantity  int
}

type UserOrderItem struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type UserOrder struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Total  float64         `json:"total"`
	Status string          `json:"status"`
	Items  []UserOrderItem `json:"items"`
}

type OrderEvent struct {
	ID       string    `json:"id"`
	OrderID  int64     `json:"order_id"`
	Username string    `json:"username"`
	Type     string    `json:"type"` // created, stock_check
	Status   string    `json:"status"`
	Total    float64   `json:"total"`
	Occurred time.Time `json:"occurred"`
}
