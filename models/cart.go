package models

// CartItem is a catalog entry plus the quantity held in a cart.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

type AddCartItemRequest struct {
	ProductID int `json:"product_id" binding:"required"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}
