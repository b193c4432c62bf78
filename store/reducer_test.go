package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retro-store/models"
)

func cartridge(id, stock int) models.Product {
	return models.Product{
		ID:        id,
		Name:      "Super Mario Bros. 3",
		Category:  "Games",
		Price:     decimal.RequireFromString("45.99"),
		Stock:     stock,
		Condition: "used",
	}
}

func signedIn() State {
	return State{Session: &Session{Username: "jdoe", UserType: models.UserTypeUser}}
}

func TestReduce_AddToCartRequiresSession(t *testing.T) {
	s, _, err := Reduce(State{}, AddToCart{Product: cartridge(1, 3)})
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, s.Cart)
	assert.Equal(t, "Please sign in to add items to your cart", Message(err))
}

func TestReduce_AddToCartCapsAtStock(t *testing.T) {
	s := signedIn()
	var (
		notice Notice
		err    error
	)
	for i := 0; i < 2; i++ {
		s, notice, err = Reduce(s, AddToCart{Product: cartridge(1, 2)})
		require.NoError(t, err)
	}
	assert.Equal(t, "Added to cart", notice.Text)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, 2, s.Cart[0].Quantity)

	after, _, err := Reduce(s, AddToCart{Product: cartridge(1, 2)})
	assert.ErrorIs(t, err, ErrNotEnoughStock)
	assert.Equal(t, "Not enough stock available", Message(err))
	assert.Equal(t, s, after)
}

func TestReduce_AddToCartOutOfStock(t *testing.T) {
	_, _, err := Reduce(signedIn(), AddToCart{Product: cartridge(1, 0)})
	assert.ErrorIs(t, err, ErrNotEnoughStock)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s, _, err := Reduce(signedIn(), AddToCart{Product: cartridge(1, 5)})
	require.NoError(t, err)

	_, _, err = Reduce(s, AddToCart{Product: cartridge(1, 5)})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cart[0].Quantity)

	_, _, err = Reduce(s, RemoveFromCart{ProductID: 1})
	require.NoError(t, err)
	assert.Len(t, s.Cart, 1)
}

func TestReduce_UpdateCartQuantity(t *testing.T) {
	s, _, err := Reduce(signedIn(), AddToCart{Product: cartridge(1, 5)})
	require.NoError(t, err)

	s, _, err = Reduce(s, UpdateCartQuantity{ProductID: 1, Quantity: 4, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Cart[0].Quantity)

	_, _, err = Reduce(s, UpdateCartQuantity{ProductID: 1, Quantity: 6, Stock: 5})
	assert.ErrorIs(t, err, ErrNotEnoughStock)

	_, _, err = Reduce(s, UpdateCartQuantity{ProductID: 2, Quantity: 1, Stock: 5})
	assert.ErrorIs(t, err, ErrNotInCart)

	s, notice, err := Reduce(s, UpdateCartQuantity{ProductID: 1, Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, s.Cart)
	assert.Equal(t, "Removed from cart", notice.Text)
}

func TestReduce_LogoutClearsEverything(t *testing.T) {
	s, _, err := Reduce(signedIn(), AddToCart{Product: cartridge(1, 5)})
	require.NoError(t, err)
	s, _, err = Reduce(s, SetOrderSearch{Search: "mario"})
	require.NoError(t, err)

	s, notice, err := Reduce(s, Logout{})
	require.NoError(t, err)
	assert.Equal(t, "Logged out successfully", notice.Text)
	assert.True(t, s.Empty())
}

func TestReduce_FilterChangesResetPage(t *testing.T) {
	s, _, _ := Reduce(State{}, SetOrderPage{Page: 4})
	assert.Equal(t, 4, s.Orders.Page)

	s, _, _ = Reduce(s, SetOrderSearch{Search: "diana"})
	assert.Equal(t, 1, s.Orders.Page)
	assert.Equal(t, "diana", s.Orders.Search)

	s, _, _ = Reduce(s, SetOrderPage{Page: 3})
	s, _, _ = Reduce(s, SetOrderFilter{Filter: "Nintendo Game Boy"})
	assert.Equal(t, 1, s.Orders.Page)
	assert.Equal(t, "Nintendo Game Boy", s.Orders.Filter)

	s, _, _ = Reduce(s, SetOrderPage{Page: -2})
	assert.Equal(t, 1, s.Orders.Page)
}

func TestReduce_ToggleOrderExpansion(t *testing.T) {
	s, _, _ := Reduce(State{}, ToggleOrderExpansion{OrderID: "order1"})
	s, _, _ = Reduce(s, ToggleOrderExpansion{OrderID: "order2"})
	assert.True(t, s.Orders.IsExpanded("order1"))
	assert.True(t, s.Orders.IsExpanded("order2"))

	s, _, _ = Reduce(s, ToggleOrderExpansion{OrderID: "order1"})
	assert.False(t, s.Orders.IsExpanded("order1"))
	assert.True(t, s.Orders.IsExpanded("order2"))

	s, _, _ = Reduce(s, SetOrderPage{Page: 2})
	assert.Empty(t, s.Orders.Expanded)
}

func TestCartTotals(t *testing.T) {
	s, _, _ := Reduce(signedIn(), AddToCart{Product: cartridge(1, 5)})
	s, _, _ = Reduce(s, AddToCart{Product: cartridge(1, 5)})
	gameboy := cartridge(6, 5)
	gameboy.Price = decimal.RequireFromString("69.99")
	s, _, _ = Reduce(s, AddToCart{Product: gameboy})

	assert.Equal(t, 3, CartItemCount(s.Cart))
	assert.Equal(t, "161.97", CartTotal(s.Cart).StringFixed(2))
}

type bogus struct{}

func (bogus) Name() string { return "bogus" }

func TestReduce_UnknownAction(t *testing.T) {
	_, _, err := Reduce(State{}, bogus{})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
