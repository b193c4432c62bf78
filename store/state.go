// Package store holds per-user application state (session, cart and the
// admin order table) and the reducer that transforms it.
package store

import (
	"errors"

	"github.com/shopspring/decimal"

	"retro-store/analytics"
	"retro-store/models"
)

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrNotEnoughStock = errors.New("not enough stock")
	ErrNotInCart      = errors.New("item is not in the cart")
	ErrUnknownAction  = errors.New("unknown action")
)

var messages = map[error]string{
	ErrNotSignedIn:    "Please sign in to add items to your cart",
	ErrNotEnoughStock: "Not enough stock available",
	ErrNotInCart:      "Item is not in the cart",
}

// Message returns the shopper-facing text for an error returned by Reduce.
func Message(err error) string {
	for target, msg := range messages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return err.Error()
}

type Session struct {
	Username string `json:"username"`
	UserType string `json:"userType"`
}

// TableState is the admin order table's view state.
type TableState struct {
	Search   string   `json:"search"`
	Filter   string   `json:"filter"`
	Page     int      `json:"page"`
	Expanded []string `json:"expanded"`
}

func (t TableState) IsExpanded(orderID string) bool {
	for _, id := range t.Expanded {
		if id == orderID {
			return true
		}
	}
	return false
}

type State struct {
	Session *Session          `json:"session,omitempty"`
	Cart    []models.CartItem `json:"cart"`
	Orders  TableState        `json:"orders"`
}

// Empty reports whether s carries nothing worth persisting.
func (s State) Empty() bool {
	return s.Session == nil && len(s.Cart) == 0 && s.Orders.Search == "" &&
		(s.Orders.Filter == "" || s.Orders.Filter == analytics.FilterAll) && s.Orders.Page <= 1 && len(s.Orders.Expanded) == 0
}

// Notice is a short message for the shopper about the outcome of an action.
type Notice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func success(text string) Notice { return Notice{Level: "success", Text: text} }

func CartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func CartItemCount(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
