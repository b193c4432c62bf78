package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"retro-store/analytics"
	"retro-store/config"
	"retro-store/database"
	"retro-store/middlewares"
	"retro-store/models"
	"retro-store/store"
)

// Repository 处理函数使用的数据访问
type Repository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	CreateUser(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (models.User, error)
	CreateOrder(ctx context.Context, username string, lines []models.OrderLine) (database.PlacedOrder, error)
	ListSaleLines(ctx context.Context) ([]models.SaleLine, error)
	ListUserSaleLines(ctx context.Context, username string) ([]models.SaleLine, error)
}

// EventPublisher 订单事件发布，由 *rabbitmq.RabbitMQ 实现
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent, priority int) error
	PublishDelayedEvent(event models.OrderEvent, delay time.Duration) error
}

var (
	cfg        *config.Config = config.LoadConfig()
	repo       Repository     = database.SQLRepository{}
	stateStore store.Store    = store.NewMemoryStore()
	publisher  EventPublisher
	memo       analytics.Memo
)

func SetConfig(c *config.Config) {
	cfg = c
}

func SetRepository(r Repository) {
	repo = r
	memo.Reset()
}

func SetStore(s store.Store) {
	stateStore = s
}

func SetRabbitMQ(p EventPublisher) {
	publisher = p
}

func currentUser(c *gin.Context) string {
	return c.GetString(middlewares.ContextUsername)
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(middlewares.ContextUserType) == models.UserTypeAdmin
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return n, true
}

func internalError(c *gin.Context, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// reducerError 状态动作被拒绝时的响应
func reducerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotSignedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": store.Message(err)})
	case errors.Is(err, store.ErrNotEnoughStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": store.Message(err)})
	case errors.Is(err, store.ErrNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": store.Message(err)})
	default:
		internalError(c, "Failed to update state", err)
	}
}
