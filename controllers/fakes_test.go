package controllers

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"retro-store/database"
	"retro-store/models"
)

type fakeUser struct {
	models.User
	password string
}

// fakeRepo keeps users, products and sale lines in memory.
type fakeRepo struct {
	mu       sync.Mutex
	users    []fakeUser
	products []models.Product
	lines    []models.SaleLine
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 100}
}

func (f *fakeRepo) addUser(username, password, userType string) {
	f.users = append(f.users, fakeUser{
		User:     models.User{ID: len(f.users) + 1, Username: username, Email: username + "@example.com", UserType: userType},
		password: password,
	})
}

func (f *fakeRepo) addProduct(name, price string, stock int, condition string) models.Product {
	p := models.Product{
		ID:        len(f.products) + 1,
		Name:      name,
		Category:  "Console",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Condition: condition,
	}
	f.products = append(f.products, p)
	return p
}

func (f *fakeRepo) addSale(orderID int, customer, product string, qty int, price float64, date string) {
	f.nextID++
	f.lines = append(f.lines, models.SaleLine{
		ID:           strconv.Itoa(f.nextID),
		OrderID:      strconv.Itoa(orderID),
		ProductID:    "1",
		ProductName:  product,
		Quantity:     qty,
		UnitPrice:    price,
		Date:         date,
		CustomerName: customer,
	})
}

func (f *fakeRepo) ListProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeRepo) GetProduct(_ context.Context, id int) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %d: %w", id, database.ErrNotFound)
}

func (f *fakeRepo) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = len(f.products) + 1
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeRepo) UpdateProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = p
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeRepo) CreateUser(_ context.Context, req models.RegisterRequest) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == req.Username {
			return models.User{}, database.ErrDuplicateUsername
		}
		if u.Email == req.Email {
			return models.User{}, database.ErrDuplicateEmail
		}
	}
	u := models.User{
		ID:        len(f.users) + 1,
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserType:  models.UserTypeUser,
	}
	f.users = append(f.users, fakeUser{User: u, password: req.Password})
	return u, nil
}

func (f *fakeRepo) Authenticate(_ context.Context, identifier, password string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if (u.Username == identifier || u.Email == identifier) && u.password == password {
			return u.User, nil
		}
	}
	return models.User{}, database.ErrInvalidCredentials
}

func (f *fakeRepo) CreateOrder(_ context.Context, username string, lines []models.OrderLine) (database.PlacedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	known := false
	for _, u := range f.users {
		known = known || u.Username == username
	}
	if !known {
		return database.PlacedOrder{}, database.ErrNotFound
	}

	total := decimal.Zero
	for _, l := range lines {
		i := f.productIndex(l.ProductID)
		if i < 0 {
			return database.PlacedOrder{}, database.ErrNotFound
		}
		p := f.products[i]
		if p.Stock < l.Quantity {
			return database.PlacedOrder{}, &database.InsufficientStockError{Product: p.Name, Requested: l.Quantity, Available: p.Stock}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	f.nextID++
	orderID := f.nextID
	date := time.Now().UTC().Format("2006-01-02")
	for _, l := range lines {
		i := f.productIndex(l.ProductID)
		f.products[i].Stock -= l.Quantity
		f.addSale(orderID, username, f.products[i].Name, l.Quantity, f.products[i].Price.InexactFloat64(), date)
	}
	return database.PlacedOrder{ID: int64(orderID), Username: username, Total: total, CreatedAt: time.Now()}, nil
}

func (f *fakeRepo) productIndex(id int) int {
	for i, p := range f.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeRepo) ListSaleLines(context.Context) ([]models.SaleLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SaleLine(nil), f.lines...), nil
}

func (f *fakeRepo) ListUserSaleLines(_ context.Context, username string) ([]models.SaleLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SaleLine, 0)
	for _, l := range f.lines {
		if l.CustomerName == username {
			out = append(out, l)
		}
	}
	return out, nil
}

type published struct {
	event    models.OrderEvent
	priority int
	delay    time.Duration
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) PublishOrderEvent(event models.OrderEvent, priority int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{event: event, priority: priority})
	return nil
}

func (p *fakePublisher) PublishDelayedEvent(event models.OrderEvent, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{event: event, delay: delay})
	return nil
}
