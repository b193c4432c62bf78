package analytics

import (
	"strconv"

	"retro-store/models"
)

// LowStockThreshold is the stock level below which a product counts as low.
const LowStockThreshold = 5

type Metrics struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	TotalProducts int     `json:"totalProducts"`
	LowStockCount int     `json:"lowStockCount"`
}

func TotalRevenue(lines []models.SaleLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}

// TotalOrders counts distinct order ids.
func TotalOrders(lines []models.SaleLine) int {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		seen[line.OrderID] = struct{}{}
	}
	return len(seen)
}

func TotalProducts(products []models.Product) int {
	return len(products)
}

func LowStockCount(products []models.Product) int {
	n := 0
	for _, p := range products {
		if IsLowStock(p) {
			n++
		}
	}
	return n
}

func IsLowStock(p models.Product) bool {
	return p.Stock < LowStockThreshold
}

func ComputeMetrics(lines []models.SaleLine, products []models.Product) Metrics {
	return Metrics{
		TotalRevenue:  TotalRevenue(lines),
		TotalOrders:   TotalOrders(lines),
		TotalProducts: TotalProducts(products),
		LowStockCount: LowStockCount(products),
	}
}

// FormatMoney renders an amount with two decimals. Amounts are only rounded
// here, never while accumulating.
func FormatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
