package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retro-store/models"
)

const productColumns = "id, name, description, category, price, stock, item_condition, image"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p     models.Product
		image sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.Condition, &image); err != nil {
		return models.Product{}, err
	}
	if image.Valid && image.String != "" {
		p.Image = &image.String
	}
	return p, nil
}

func queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func ListProducts(ctx context.Context) ([]models.Product, error) {
	return queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// LowStockProducts returns the products whose stock is below threshold.
func LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	return queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE stock < ? ORDER BY stock, id", threshold)
}

func GetProduct(ctx context.Context, id int) (models.Product, error) {
	row := DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	result, err := DB.ExecContext(ctx,
		"INSERT INTO products (name, description, category, price, stock, item_condition, image) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Name, p.Description, p.Category, p.Price, p.Stock, p.Condition, p.Image,
	)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = int(id)
	return p, nil
}

func UpdateProduct(ctx context.Context, p models.Product) error {
	_, err := DB.ExecContext(ctx,
		"UPDATE products SET name = ?, description = ?, category = ?, price = ?, stock = ?, item_condition = ?, image = ? WHERE id = ?",
		p.Name, p.Description, p.Category, p.Price, p.Stock, p.Condition, p.Image, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return nil
}
