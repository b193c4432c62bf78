package database

import (
	"context"

	"retro-store/models"
)

// SQLRepository exposes the package functions as a value, for callers that
// take their data access as an interface.
type SQLRepository struct{}

func (SQLRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	return ListProducts(ctx)
}

func (SQLRepository) GetProduct(ctx context.Context, id int) (models.Product, error) {
	return GetProduct(ctx, id)
}

func (SQLRepository) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	return CreateProduct(ctx, p)
}

func (SQLRepository) UpdateProduct(ctx context.Context, p models.Product) error {
	return UpdateProduct(ctx, p)
}

func (SQLRepository) CreateUser(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	return CreateUser(ctx, req)
}

func (SQLRepository) Authenticate(ctx context.Context, identifier, password string) (models.User, error) {
	return Authenticate(ctx, identifier, password)
}

func (SQLRepository) CreateOrder(ctx context.Context, username string, lines []models.OrderLine) (PlacedOrder, error) {
	return CreateOrder(ctx, username, lines)
}

func (SQLRepository) ListSaleLines(ctx context.Context) ([]models.SaleLine, error) {
	return ListSaleLines(ctx)
}

func (SQLRepository) ListUserSaleLines(ctx context.Context, username string) ([]models.SaleLine, error) {
	return ListUserSaleLines(ctx, username)
}
