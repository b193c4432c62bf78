package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"retro-store/database"
	"retro-store/middlewares"
	"retro-store/models"
	"retro-store/store"
)

func cartResponse(items []models.CartItem) gin.H {
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		item.Product = withAbsoluteImage(item.Product)
		out = append(out, item)
	}
	return gin.H{
		"items": out,
		"total": store.CartTotal(items).StringFixed(2),
		"count": store.CartItemCount(items),
	}
}

// cartProduct 查询商品，不存在时返回 404
func cartProduct(c *gin.Context, id int) (models.Product, bool) {
	product, err := repo.GetProduct(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return product, false
	}
	if err != nil {
		internalError(c, "Failed to load product", err)
		return product, false
	}
	return product, true
}

// ensureSession 状态中没有会话时（过期或已登出）按 token 补写
func ensureSession(c *gin.Context) error {
	ctx := c.Request.Context()
	username := currentUser(c)
	state, err := stateStore.Load(ctx, username)
	if err != nil || state.Session != nil {
		return err
	}
	_, _, err = stateStore.Dispatch(ctx, username,
		store.Login{Username: username, UserType: c.GetString(middlewares.ContextUserType)})
	return err
}

func GetCart(c *gin.Context) {
	state, err := stateStore.Load(c.Request.Context(), currentUser(c))
	if err != nil {
		internalError(c, "Failed to load cart", err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(state.Cart))
}

func AddCartItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, ok := cartProduct(c, req.ProductID)
	if !ok {
		return
	}
	if err := ensureSession(c); err != nil {
		internalError(c, "Failed to load cart", err)
		return
	}

	state, notice, err := stateStore.Dispatch(c.Request.Context(), currentUser(c), store.AddToCart{Product: product})
	if err != nil {
		reducerError(c, err)
		return
	}
	resp := cartResponse(state.Cart)
	resp["message"] = notice.Text
	c.JSON(http.StatusOK, resp)
}

func UpdateCartItem(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, ok := cartProduct(c, id)
	if !ok {
		return
	}

	state, _, err := stateStore.Dispatch(c.Request.Context(), currentUser(c), store.UpdateCartQuantity{
		ProductID: id,
		Quantity:  *req.Quantity,
		Stock:     product.Stock,
	})
	if err != nil {
		reducerError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(state.Cart))
}

func RemoveCartItem(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	state, notice, err := stateStore.Dispatch(c.Request.Context(), currentUser(c), store.RemoveFromCart{ProductID: id})
	if err != nil {
		reducerError(c, err)
		return
	}
	resp := cartResponse(state.Cart)
	resp["message"] = notice.Text
	c.JSON(http.StatusOK, resp)
}

// Checkout 整个购物车下单并清空
func Checkout(c *gin.Context) {
	defer middlewares.RecordOperation(c, "checkout")

	username := currentUser(c)
	state, err := stateStore.Load(c.Request.Context(), username)
	if err != nil {
		internalError(c, "Failed to load cart", err)
		return
	}
	if len(state.Cart) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	lines := make([]models.OrderLine, 0, len(state.Cart))
	for _, item := range state.Cart {
		lines = append(lines, models.OrderLine{ProductID: item.ID, Quantity: item.Quantity})
	}

	order, ok := placeOrder(c, username, lines)
	if !ok {
		return
	}
	if _, _, err := stateStore.Dispatch(c.Request.Context(), username, store.ClearCart{}); err != nil {
		log.Printf("Order %d placed but cart of %s not cleared: %v", order.ID, username, err)
	}
	respondPlaced(c, order)
}
