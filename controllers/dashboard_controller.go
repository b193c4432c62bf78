package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"retro-store/analytics"
	"retro-store/middlewares"
	"retro-store/store"
)

// loadDashboard 计算看板，数据未变化时复用上次结果
func loadDashboard(c *gin.Context) (analytics.Dashboard, bool) {
	ctx := c.Request.Context()
	lines, err := repo.ListSaleLines(ctx)
	if err != nil {
		internalError(c, "Failed to fetch sales", err)
		return analytics.Dashboard{}, false
	}
	products, err := repo.ListProducts(ctx)
	if err != nil {
		internalError(c, "Failed to fetch products", err)
		return analytics.Dashboard{}, false
	}

	dash, hit := memo.Dashboard(lines, products)
	if !hit {
		for _, id := range analytics.Conflicts(lines) {
			log.Printf("Order %s has lines with differing customer or date; using the first", id)
		}
	}
	middlewares.RecordDashboard(dash.Metrics, hit)
	return dash, true
}

func GetDashboard(c *gin.Context) {
	dash, ok := loadDashboard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dash)
}

// GetAdminOrders 订单表分页，search/product/page 参数更新已保存的表状态
func GetAdminOrders(c *gin.Context) {
	ctx := c.Request.Context()
	username := currentUser(c)

	var actions []store.Action
	if search, ok := c.GetQuery("search"); ok {
		actions = append(actions, store.SetOrderSearch{Search: search})
	}
	if filter, ok := c.GetQuery("product"); ok {
		actions = append(actions, store.SetOrderFilter{Filter: filter})
	}
	if raw, ok := c.GetQuery("page"); ok {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		actions = append(actions, store.SetOrderPage{Page: page})
	}

	state, err := stateStore.Load(ctx, username)
	for _, action := range actions {
		if err != nil {
			break
		}
		state, _, err = stateStore.Dispatch(ctx, username, action)
	}
	if err != nil {
		reducerError(c, err)
		return
	}

	dash, ok := loadDashboard(c)
	if !ok {
		return
	}

	table := state.Orders
	page := analytics.Paginate(analytics.FilterOrders(dash.Orders, table.Search, table.Filter), table.Page)
	c.JSON(http.StatusOK, gin.H{
		"page":           page,
		"search":         table.Search,
		"filter":         filterOrAll(table.Filter),
		"expanded":       nonNil(table.Expanded),
		"productOptions": dash.ProductOptions,
	})
}

func ToggleOrder(c *gin.Context) {
	state, _, err := stateStore.Dispatch(c.Request.Context(), currentUser(c),
		store.ToggleOrderExpansion{OrderID: c.Param("id")})
	if err != nil {
		reducerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":  c.Param("id"),
		"expanded": state.Orders.IsExpanded(c.Param("id")),
	})
}

func filterOrAll(f string) string {
	if f == "" {
		return analytics.FilterAll
	}
	return f
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
