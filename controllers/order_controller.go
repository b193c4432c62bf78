package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"retro-store/analytics"
	"retro-store/database"
	"retro-store/middlewares"
	"retro-store/models"
	"retro-store/rabbitmq"
)

func CreateOrder(c *gin.Context) {
	defer middlewares.RecordOperation(c, "create")

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := currentUser(c)
	if req.Username != "" && req.Username != username {
		if !isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot place orders for another user"})
			return
		}
		username = req.Username
	}

	lines := make([]models.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := strconv.Atoi(item.ProductID.String())
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id " + item.ProductID.String()})
			return
		}
		lines = append(lines, models.OrderLine{ProductID: id, Quantity: item.Quantity})
	}

	if order, ok := placeOrder(c, username, lines); ok {
		respondPlaced(c, order)
	}
}

// placeOrder 创建订单并发送事件，失败时已写入响应
func placeOrder(c *gin.Context, username string, lines []models.OrderLine) (database.PlacedOrder, bool) {
	order, err := repo.CreateOrder(c.Request.Context(), username, lines)

	var stockErr *database.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock for " + stockErr.Product})
		return order, false
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User or product not found"})
		return order, false
	case err != nil:
		internalError(c, "Failed to create order", err)
		return order, false
	}

	if publisher != nil {
		total := order.Total.InexactFloat64()

		created := rabbitmq.NewOrderEvent(order.ID, order.Username, rabbitmq.EventCreated, total)
		if err := publisher.PublishOrderEvent(created, rabbitmq.OrderPriority(total)); err != nil {
			log.Printf("Failed to publish order created event: %v", err)
		}

		check := rabbitmq.NewOrderEvent(order.ID, order.Username, rabbitmq.EventStockCheck, total)
		if err := publisher.PublishDelayedEvent(check, cfg.StockCheckDelay); err != nil && !errors.Is(err, rabbitmq.ErrDelayUnavailable) {
			log.Printf("Failed to publish delayed stock check event: %v", err)
		}
	}
	return order, true
}

func respondPlaced(c *gin.Context, order database.PlacedOrder) {
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully!",
		"order_id": order.ID,
		"total":    order.Total.StringFixed(2),
	})
}

// ownOrders 查询 :username 的订单，仅本人或管理员
func ownOrders(c *gin.Context) ([]models.UserOrder, bool) {
	username := c.Param("username")
	if username != currentUser(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}

	lines, err := repo.ListUserSaleLines(c.Request.Context(), username)
	if err != nil {
		internalError(c, "Failed to fetch orders", err)
		return nil, false
	}
	return analytics.UserOrders(analytics.GroupOrders(lines)), true
}

func GetUserOrders(c *gin.Context) {
	defer middlewares.RecordOperation(c, "list")

	orders, ok := ownOrders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, orders)
}

func GetUserSpending(c *gin.Context) {
	defer middlewares.RecordOperation(c, "spending")

	orders, ok := ownOrders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.MonthlySpending(orders))
}

// HandleDeadLetter 死信队列处理函数
func HandleDeadLetter(c *gin.Context) {
	defer middlewares.RecordOperation(c, "dead_letter")

	var deadLetter struct {
		OrderID int64  `json:"order_id" binding:"required"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&deadLetter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Handling dead letter for order %d: %s", deadLetter.OrderID, deadLetter.Reason)
	c.JSON(http.StatusOK, gin.H{"message": "Dead letter processed"})
}
