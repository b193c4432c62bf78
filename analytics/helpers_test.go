package analytics

import (
	"github.com/shopspring/decimal"

	"retro-store/models"
)

func line(id, orderID, product string, qty int, price float64, date, customer string) models.SaleLine {
	return models.SaleLine{
		ID:           id,
		OrderID:      orderID,
		ProductID:    product,
		ProductName:  product,
		Quantity:     qty,
		UnitPrice:    price,
		Date:         date,
		CustomerName: customer,
	}
}

func sampleLines() []models.SaleLine {
	return []models.SaleLine{
		line("sale1", "order1", "Super Mario Bros. 3", 1, 45.99, "2024-09-10", "John Doe"),
		line("sale2", "order1", "Nintendo Game Boy", 1, 69.99, "2024-09-10", "John Doe"),
		line("sale3", "order2", "Nintendo Entertainment System", 2, 129.99, "2024-08-25", "Diana Ross"),
		line("sale4", "order3", "Super Mario Bros. 3", 3, 45.99, "2024-07-28", "Robert Kim"),
		line("sale5", "order2", "Super Mario Bros. 3", 1, 45.99, "2024-08-25", "Diana Ross"),
		line("sale6", "order4", "Pac-Man Arcade Cabinet", 1, 2499.99, "2024-09-11", "David Miller"),
	}
}

func product(id int, name, condition string, stock int) models.Product {
	return models.Product{
		ID:        id,
		Name:      name,
		Category:  "Games",
		Price:     decimal.RequireFromString("10.00"),
		Stock:     stock,
		Condition: condition,
	}
}
