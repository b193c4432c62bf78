package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retro-store/middlewares"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine) {
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/dead-letter", HandleDeadLetter)

	api := r.Group("/api")
	api.POST("/login/", Login)
	api.POST("/register/", Register)
	api.GET("/products/", GetProducts)
	api.GET("/products/facets/", GetProductFacets)

	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		auth.POST("/logout/", Logout)

		auth.POST("/orders/create/", CreateOrder)
		auth.GET("/orders/user/:username/", GetUserOrders)
		auth.GET("/orders/user/:username/spending/", GetUserSpending)

		auth.GET("/cart/", GetCart)
		auth.POST("/cart/items/", AddCartItem)
		auth.PUT("/cart/items/:id/", UpdateCartItem)
		auth.DELETE("/cart/items/:id/", RemoveCartItem)
		auth.POST("/cart/checkout/", Checkout)
	}

	admin := auth.Group("")
	admin.Use(middlewares.AdminOnly())
	{
		admin.POST("/products/create/", CreateProduct)
		admin.POST("/products/edit/:id/", EditProduct)

		admin.GET("/admin/dashboard/", GetDashboard)
		admin.GET("/admin/orders/", GetAdminOrders)
		admin.POST("/admin/orders/:id/toggle/", ToggleOrder)
	}
}
