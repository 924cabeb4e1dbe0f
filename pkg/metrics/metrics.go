// Package metrics 提供 Prometheus helper，包含 HTTP/DB/业务指标模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 业务指标
	OrdersCreatedTotal prometheus.Counter
	AssetsSyncedTotal  prometheus.Counter
	SyncCyclesTotal    prometheus.Counter
	SyncFailuresTotal  prometheus.Counter
	AssetsRegistered   prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total orders created",
		}),
		AssetsSyncedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "assets_synced_total",
			Help:      "Total assets upserted by the sync worker",
		}),
		SyncCyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "sync_cycles_total",
			Help:      "Total sync cycles executed",
		}),
		SyncFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "sync_failures_total",
			Help:      "Total sync cycles that failed",
		}),
		AssetsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tradedesk",
			Subsystem: serviceName,
			Name:      "assets_registered",
			Help:      "Number of assets currently registered",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.OrdersCreatedTotal,
		m.AssetsSyncedTotal,
		m.SyncCyclesTotal,
		m.SyncFailuresTotal,
		m.AssetsRegistered,
	}

	for _, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return fmt.Errorf("failed to register collector: %w", err)
			}
		}
	}
	return nil
}

// StartHTTPServer 启动独立的指标 HTTP 服务
func StartHTTPServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info(context.Background(), "Starting metrics HTTP server", "addr", addr, "path", path)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "Metrics HTTP server error", "error", err)
		}
	}()

	return nil
}
