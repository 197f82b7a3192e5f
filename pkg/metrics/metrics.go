// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/inventoryorder/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 业务指标
	OrdersCreatedTotal   prometheus.Counter
	OrdersRejectedTotal  *prometheus.CounterVec
	StockDecrementsTotal prometheus.Counter
	ProductsTotal        prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inventory",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total orders created",
		}),
		OrdersRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Subsystem: serviceName,
			Name:      "orders_rejected_total",
			Help:      "Total rejected orders by reason",
		}, []string{"reason"}),
		StockDecrementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Subsystem: serviceName,
			Name:      "stock_decrements_total",
			Help:      "Total stock decrement operations committed",
		}),
		ProductsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "inventory",
			Subsystem: serviceName,
			Name:      "products_total",
			Help:      "Number of products in the catalog",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OrdersCreatedTotal,
		m.OrdersRejectedTotal,
		m.StockDecrementsTotal,
		m.ProductsTotal,
	}

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}

// Collector 业务指标收集接口，应用服务通过它上报订单与库存指标
type Collector interface {
	// 记录订单创建成功
	RecordOrderCreated()
	// 记录订单被拒绝
	RecordOrderRejected(reason string)
	// 记录库存扣减提交
	RecordStockDecrement(count int)
	// 更新商品总数
	SetProductsTotal(count int64)
}

// DefaultCollector 默认指标收集器实现
type DefaultCollector struct {
	metrics *Metrics
}

// NewDefaultCollector 创建默认指标收集器
func NewDefaultCollector(metrics *Metrics) *DefaultCollector {
	return &DefaultCollector{metrics: metrics}
}

func (c *DefaultCollector) RecordOrderCreated() {
	c.metrics.OrdersCreatedTotal.Inc()
}

func (c *DefaultCollector) RecordOrderRejected(reason string) {
	c.metrics.OrdersRejectedTotal.WithLabelValues(reason).Inc()
}

func (c *DefaultCollector) RecordStockDecrement(count int) {
	c.metrics.StockDecrementsTotal.Add(float64(count))
}

func (c *DefaultCollector) SetProductsTotal(count int64) {
	c.metrics.ProductsTotal.Set(float64(count))
}

// NoopCollector 空实现，未启用指标或测试场景使用
type NoopCollector struct{}

func (NoopCollector) RecordOrderCreated()        {}
func (NoopCollector) RecordOrderRejected(string) {}
func (NoopCollector) RecordStockDecrement(int)   {}
func (NoopCollector) SetProductsTotal(int64)     {}
