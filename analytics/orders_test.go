package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retro-store/models"
)

func TestGroupOrders_SingleOrder(t *testing.T) {
	lines := []models.SaleLine{
		{ID: "1", OrderID: "o1", ProductName: "A", Quantity: 1, UnitPrice: 10},
		{ID: "2", OrderID: "o1", ProductName: "B", Quantity: 2, UnitPrice: 5},
	}

	orders := GroupOrders(lines)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].OrderID)
	assert.InDelta(t, 20.0, orders[0].Total, 1e-9)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, models.OrderStatusCompleted, orders[0].Status)
}

func TestGroupOrders_Empty(t *testing.T) {
	orders := GroupOrders(nil)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	assert.Zero(t, TotalRevenue(nil))
	assert.Zero(t, TotalOrders(nil))
}

func TestGroupOrders_InterleavedKeepsFirstSeenOrder(t *testing.T) {
	orders := GroupOrders(sampleLines())
	require.Len(t, orders, 4)

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}
	assert.Equal(t, []string{"order1", "order2", "order3", "order4"}, ids)

	// order2's lines are split by an order3 line.
	require.Len(t, orders[1].Items, 2)
	assert.Equal(t, "sale3", orders[1].Items[0].ID)
	assert.Equal(t, "sale5", orders[1].Items[1].ID)
	assert.Equal(t, "Diana Ross", orders[1].CustomerName)
	assert.Equal(t, "2024-08-25", orders[1].Date)
}

func TestGroupOrders_TotalsMatchRevenue(t *testing.T) {
	lines := sampleLines()
	orders := GroupOrders(lines)

	var sum float64
	for _, o := range orders {
		sum += o.Total
	}
	assert.InDelta(t, TotalRevenue(lines), sum, 1e-6)
	assert.Equal(t, TotalOrders(lines), len(orders))
}

func TestGroupOrders_Idempotent(t *testing.T) {
	once := GroupOrders(sampleLines())
	twice := GroupOrders(Flatten(once))
	assert.Equal(t, once, twice)
}

func TestGroupOrders_FirstSeenWinsOnConflict(t *testing.T) {
	lines := []models.SaleLine{
		{ID: "1", OrderID: "o1", CustomerName: "Ann", Date: "2024-01-01", Quantity: 1, UnitPrice: 1},
		{ID: "2", OrderID: "o1", CustomerName: "Bob", Date: "2024-01-02", Quantity: 1, UnitPrice: 1},
		{ID: "3", OrderID: "o2", CustomerName: "Cy", Date: "2024-01-02", Quantity: 1, UnitPrice: 1},
	}

	orders := GroupOrders(lines)
	require.Len(t, orders, 2)
	assert.Equal(t, "Ann", orders[0].CustomerName)
	assert.Equal(t, "2024-01-01", orders[0].Date)
	assert.Equal(t, []string{"o1"}, Conflicts(lines))
}

func TestConflicts_NoneForConsistentLines(t *testing.T) {
	assert.Empty(t, Conflicts(sampleLines()))
}

func TestUserOrders(t *testing.T) {
	orders := UserOrders(GroupOrders(sampleLines()[:2]))
	require.Len(t, orders, 1)
	assert.Equal(t, "order1", orders[0].ID)
	assert.Equal(t, "2024-09-10", orders[0].Date)
	assert.InDelta(t, 115.98, orders[0].Total, 1e-9)
	assert.Equal(t, models.UserOrderItem{ProductName: "Super Mario Bros. 3", Quantity: 1, Price: 45.99}, orders[0].Items[0])
}
