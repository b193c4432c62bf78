package store

import (
	"fmt"

	"retro-store/models"
)

// Action is a state transition request handled by Reduce.
type Action interface {
	Name() string
}

type (
	Login struct {
		Username string
		UserType string
	}
	Logout    struct{}
	AddToCart struct {
		Product models.Product
	}
	UpdateCartQuantity struct {
		ProductID int
		Quantity  int
		// Stock is the product's current stock; quantities above it are
		// rejected.
		Stock int
	}
	RemoveFromCart struct {
		ProductID int
	}
	ClearCart      struct{}
	SetOrderSearch struct {
		Search string
	}
	SetOrderFilter struct {
		Filter string
	}
	SetOrderPage struct {
		Page int
	}
	ToggleOrderExpansion struct {
		OrderID string
	}
)

func (Login) Name() string                { return "login" }
func (Logout) Name() string               { return "logout" }
func (AddToCart) Name() string            { return "add_to_cart" }
func (UpdateCartQuantity) Name() string   { return "update_cart_quantity" }
func (RemoveFromCart) Name() string       { return "remove_from_cart" }
func (ClearCart) Name() string            { return "clear_cart" }
func (SetOrderSearch) Name() string       { return "set_order_search" }
func (SetOrderFilter) Name() string       { return "set_order_filter" }
func (SetOrderPage) Name() string         { return "set_order_page" }
func (ToggleOrderExpansion) Name() string { return "toggle_order_expansion" }

// Reduce applies a to s and returns the new state. s is never modified; on
// error the returned state is s itself.
func Reduce(s State, a Action) (State, Notice, error) {
	next := s.clone()

	switch a := a.(type) {
	case Login:
		next.Session = &Session{Username: a.Username, UserType: a.UserType}
		return next, success("Login successful"), nil

	case Logout:
		return State{}, success("Logged out successfully"), nil

	case AddToCart:
		if s.Session == nil {
			return s, Notice{}, ErrNotSignedIn
		}
		i := cartIndex(next.Cart, a.Product.ID)
		if i < 0 {
			if a.Product.Stock < 1 {
				return s, Notice{}, ErrNotEnoughStock
			}
			next.Cart = append(next.Cart, models.CartItem{Product: a.Product, Quantity: 1})
			return next, success("Added to cart"), nil
		}
		if next.Cart[i].Quantity >= a.Product.Stock {
			return s, Notice{}, ErrNotEnoughStock
		}
		next.Cart[i].Product = a.Product
		next.Cart[i].Quantity++
		return next, success("Added to cart"), nil

	case UpdateCartQuantity:
		if a.Quantity <= 0 {
			return Reduce(s, RemoveFromCart{ProductID: a.ProductID})
		}
		i := cartIndex(next.Cart, a.ProductID)
		if i < 0 {
			return s, Notice{}, ErrNotInCart
		}
		if a.Quantity > a.Stock {
			return s, Notice{}, ErrNotEnoughStock
		}
		next.Cart[i].Quantity = a.Quantity
		next.Cart[i].Stock = a.Stock
		return next, Notice{}, nil

	case RemoveFromCart:
		i := cartIndex(next.Cart, a.ProductID)
		if i < 0 {
			return s, Notice{}, ErrNotInCart
		}
		next.Cart = append(next.Cart[:i], next.Cart[i+1:]...)
		return next, success("Removed from cart"), nil

	case ClearCart:
		next.Cart = nil
		return next, Notice{}, nil

	case SetOrderSearch:
		next.Orders.Search = a.Search
		next.Orders.Page = 1
		return next, Notice{}, nil

	case SetOrderFilter:
		next.Orders.Filter = a.Filter
		next.Orders.Page = 1
		return next, Notice{}, nil

	case SetOrderPage:
		next.Orders.Page = max(a.Page, 1)
		next.Orders.Expanded = nil
		return next, Notice{}, nil

	case ToggleOrderExpansion:
		if next.Orders.IsExpanded(a.OrderID) {
			kept := next.Orders.Expanded[:0]
			for _, id := range next.Orders.Expanded {
				if id != a.OrderID {
					kept = append(kept, id)
				}
			}
			next.Orders.Expanded = kept
		} else {
			next.Orders.Expanded = append(next.Orders.Expanded, a.OrderID)
		}
		return next, Notice{}, nil
	}

	return s, Notice{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

func (s State) clone() State {
	next := s
	if s.Session != nil {
		session := *s.Session
		next.Session = &session
	}
	if s.Cart != nil {
		next.Cart = append([]models.CartItem(nil), s.Cart...)
	}
	if s.Orders.Expanded != nil {
		next.Orders.Expanded = append([]string(nil), s.Orders.Expanded...)
	}
	return next
}

func cartIndex(items []models.CartItem, productID int) int {
	for i, item := range items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}
