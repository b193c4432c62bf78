package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"retro-store/analytics"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_store_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retro_store_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_store_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	dashboardMemoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_store_dashboard_memo_lookups_total",
			Help: "Dashboard computations served from or missing the memo",
		},
		[]string{"result"},
	)

	dashboardRevenue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retro_store_dashboard_revenue",
		Help: "Total revenue at the last dashboard computation",
	})

	dashboardOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retro_store_dashboard_orders",
		Help: "Distinct orders at the last dashboard computation",
	})

	dashboardLowStock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retro_store_dashboard_low_stock_products",
		Help: "Products below the low-stock threshold at the last dashboard computation",
	})
)

// PrometheusMiddleware 收集 Prometheus 指标
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}

// RecordOrderOperation 记录订单操作指标
func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}

// RecordOperation 按响应状态记录订单操作，在处理函数开头 defer 调用
func RecordOperation(c *gin.Context, operation string) {
	status := c.Writer.Status()
	RecordOrderOperation(operation, status >= 200 && status < 300)
}

// RecordDashboard 更新看板指标
func RecordDashboard(m analytics.Metrics, memoHit bool) {
	result := "miss"
	if memoHit {
		result = "hit"
	}
	dashboardMemoLookups.WithLabelValues(result).Inc()
	dashboardRevenue.Set(m.TotalRevenue)
	dashboardOrders.Set(float64(m.TotalOrders))
	dashboardLowStock.Set(float64(m.LowStockCount))
}
