// Package analytics turns flat sale lines and the product catalog into the
// grouped orders, metrics and chart series shown on the admin dashboard.
//
// Every function here is pure: it reads its arguments, allocates its result
// and keeps no state between calls. Memo is the only stateful type.
package analytics

import (
	"retro-store/models"
)

// GroupOrders collapses lines into one Order per OrderID. Orders come out in
// the order their id was first seen and keep their lines in encounter order.
// Customer name and date are taken from the first line of each order.
func GroupOrders(lines []models.SaleLine) []models.Order {
	orders := make([]models.Order, 0)
	index := make(map[string]int)

	for _, line := range lines {
		i, ok := index[line.OrderID]
		if !ok {
			i = len(orders)
			index[line.OrderID] = i
			orders = append(orders, models.Order{
				OrderID:      line.OrderID,
				CustomerName: line.CustomerName,
				Date:         line.Date,
				Status:       models.OrderStatusCompleted,
				Items:        []models.SaleLine{},
			})
		}
		orders[i].Items = append(orders[i].Items, line)
		orders[i].Total += line.Subtotal()
	}
	return orders
}

// Flatten is the inverse of GroupOrders.
func Flatten(orders []models.Order) []models.SaleLine {
	lines := make([]models.SaleLine, 0)
	for _, order := range orders {
		lines = append(lines, order.Items...)
	}
	return lines
}

// Conflicts returns the ids of orders whose lines disagree on customer name
// or date. GroupOrders keeps the first-seen values for those orders.
func Conflicts(lines []models.SaleLine) []string {
	first := make(map[string]models.SaleLine)
	flagged := make(map[string]bool)
	var ids []string

	for _, line := range lines {
		seen, ok := first[line.OrderID]
		if !ok {
			first[line.OrderID] = line
			continue
		}
		if flagged[line.OrderID] {
			continue
		}
		if seen.CustomerName != line.CustomerName || seen.Date != line.Date {
			flagged[line.OrderID] = true
			ids = append(ids, line.OrderID)
		}
	}
	return ids
}

// UserOrders reshapes grouped orders into the order-history entries shown to
// shoppers.
func UserOrders(orders []models.Order) []models.UserOrder {
	out := make([]models.UserOrder, 0, len(orders))
	for _, order := range orders {
		items := make([]models.UserOrderItem, 0, len(order.Items))
		for _, line := range order.Items {
			items = append(items, models.UserOrderItem{
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Price:       line.UnitPrice,
			})
		}
		out = append(out, models.UserOrder{
			ID:     order.OrderID,
			Date:   order.Date,
			Total:  order.Total,
			Status: order.Status,
			Items:  items,
		})
	}
	return out
}
