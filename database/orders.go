package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"retro-store/models"
)

// InsufficientStockError reports the product an order asked too many units
// of. It matches ErrInsufficientStock.
type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// PlacedOrder describes an order written by CreateOrder.
type PlacedOrder struct {
	ID        int64
	Username  string
	Total     decimal.Decimal
	CreatedAt time.Time
}

type pricedLine struct {
	productID int
	name      string
	quantity  int
	price     decimal.Decimal
	stock     int
}

// mergeLines sums quantities per product, keeping first-seen product order.
func mergeLines(lines []models.OrderLine) []models.OrderLine {
	merged := make([]models.OrderLine, 0, len(lines))
	index := make(map[int]int)
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

// CreateOrder places an order for username in one transaction: it locks
// the ordered products, checks their stock, writes the order and its items
// and decrements stock.
func CreateOrder(ctx context.Context, username string, lines []models.OrderLine) (PlacedOrder, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return PlacedOrder{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback()
	}()

	var userID int
	err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return PlacedOrder{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return PlacedOrder{}, fmt.Errorf("find user: %w", err)
	}

	var (
		priced []pricedLine
		total  = decimal.Zero
	)
	for _, l := range mergeLines(lines) {
		pl := pricedLine{productID: l.ProductID, quantity: l.Quantity}
		err := tx.QueryRowContext(ctx,
			"SELECT name, price, stock FROM products WHERE id = ? FOR UPDATE", l.ProductID,
		).Scan(&pl.name, &pl.price, &pl.stock)
		if errors.Is(err, sql.ErrNoRows) {
			return PlacedOrder{}, fmt.Errorf("product %d: %w", l.ProductID, ErrNotFound)
		}
		if err != nil {
			return PlacedOrder{}, fmt.Errorf("lock product %d: %w", l.ProductID, err)
		}
		if pl.stock < l.Quantity {
			return PlacedOrder{}, &InsufficientStockError{Product: pl.name, Requested: l.Quantity, Available: pl.stock}
		}
		total = total.Add(pl.price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		priced = append(priced, pl)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, total, status, created_at) VALUES (?, ?, ?, ?)",
		userID, total, models.OrderStatusCompleted, now,
	)
	if err != nil {
		return PlacedOrder{}, fmt.Errorf("insert order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return PlacedOrder{}, fmt.Errorf("insert order: %w", err)
	}

	for _, pl := range priced {
		subtotal := pl.price.Mul(decimal.NewFromInt(int64(pl.quantity)))
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, product_name, quantity, price, subtotal) VALUES (?, ?, ?, ?, ?, ?)",
			orderID, pl.productID, pl.name, pl.quantity, pl.price, subtotal,
		); err != nil {
			return PlacedOrder{}, fmt.Errorf("insert order item: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - ? WHERE id = ?", pl.quantity, pl.productID,
		); err != nil {
			return PlacedOrder{}, fmt.Errorf("decrement stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PlacedOrder{}, fmt.Errorf("commit order: %w", err)
	}
	return PlacedOrder{ID: orderID, Username: username, Total: total, CreatedAt: now}, nil
}

const saleLineQuery = `
	SELECT oi.id, o.id, oi.product_id, oi.product_name, oi.quantity, oi.price,
	       o.created_at, u.username, u.first_name, u.last_name
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	JOIN users u ON u.id = o.user_id`

func querySaleLines(ctx context.Context, query string, args ...any) ([]models.SaleLine, error) {
	rows, err := DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sale lines: %w", err)
	}
	defer rows.Close()

	lines := make([]models.SaleLine, 0)
	for rows.Next() {
		var (
			itemID, orderID, productID    int
			productName                   string
			quantity                      int
			price                         decimal.Decimal
			createdAt                     time.Time
			username, firstName, lastName string
		)
		if err := rows.Scan(&itemID, &orderID, &productID, &productName, &quantity, &price,
			&createdAt, &username, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, models.SaleLine{
			ID:           strconv.Itoa(itemID),
			OrderID:      strconv.Itoa(orderID),
			ProductID:    strconv.Itoa(productID),
			ProductName:  productName,
			Quantity:     quantity,
			UnitPrice:    price.InexactFloat64(),
			Date:         createdAt.Format("2006-01-02"),
			CustomerName: CustomerName(username, firstName, lastName),
		})
	}
	return lines, rows.Err()
}

// ListSaleLines returns every order item as a sale line, oldest order first.
func ListSaleLines(ctx context.Context) ([]models.SaleLine, error) {
	return querySaleLines(ctx, saleLineQuery+" ORDER BY o.created_at ASC, o.id ASC, oi.id ASC")
}

// ListUserSaleLines returns the sale lines of one user, newest order first.
func ListUserSaleLines(ctx context.Context, username string) ([]models.SaleLine, error) {
	return querySaleLines(ctx, saleLineQuery+" WHERE u.username = ? ORDER BY o.created_at DESC, o.id DESC, oi.id ASC", username)
}
