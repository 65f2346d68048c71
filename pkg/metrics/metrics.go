// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP指标：请求总数、耗时分布、处理中请求数（由中间件记录）
//   - 业务指标：图书操作结果、登录结果
//   - 基础设施指标：缓存命中率、事件发布结果、熔断器状态
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值的维度（method、路由模板、结果），不要使用图书ID或用户名。
//
// 使用示例：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.RecordBookOperation("create", "success")
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initOnce 防止重复注册
	initOnce sync.Once

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// BookOperationsTotal 图书操作总数
	// 标签：operation（list/get/search/create/update/delete）、result（success/not_found/invalid/error）
	BookOperationsTotal *prometheus.CounterVec

	// LoginAttemptsTotal 登录尝试总数，标签：result（见Login*常量）
	LoginAttemptsTotal *prometheus.CounterVec

	// CacheRequestsTotal 缓存访问总数，标签：cache（book/search）、result（hit/miss/error）
	CacheRequestsTotal *prometheus.CounterVec

	// EventsPublishedTotal 领域事件发布总数，标签：routing_key、result（success/failure/rejected）
	EventsPublishedTotal *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec
)

// InitMetrics 初始化所有Prometheus指标并注册到默认Registry
// 可重复调用，只有第一次生效
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 1ms、10ms、100ms、500ms、1s、5s
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		BookOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_operations_total",
				Help: "图书操作总数",
			},
			[]string{"operation", "result"},
		)

		LoginAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "登录尝试总数",
			},
			[]string{"result"},
		)

		CacheRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_requests_total",
				Help: "缓存访问总数",
			},
			[]string{"cache", "result"},
		)

		EventsPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "领域事件发布总数",
			},
			[]string{"routing_key", "result"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)
	})
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}

// RecordBookOperation 记录图书操作结果
// result由调用方根据错误类型给出
func RecordBookOperation(operation, result string) {
	IncCounterVec(BookOperationsTotal, map[string]string{
		"operation": operation,
		"result":    result,
	})
}

// 登录结果标签
const (
	LoginSuccess            = "success"
	LoginInvalidRequest     = "invalid_request"
	LoginInvalidCredentials = "invalid_credentials"
	LoginError              = "error"
	LoginRateLimited        = "rate_limited" // 被限流中间件拒绝,未进入登录逻辑
)

// RecordLoginAttempt 记录登录结果
func RecordLoginAttempt(result string) {
	IncCounterVec(LoginAttemptsTotal, map[string]string{"result": result})
}

// RecordCache 记录缓存访问结果
func RecordCache(cache, result string) {
	IncCounterVec(CacheRequestsTotal, map[string]string{
		"cache":  cache,
		"result": result,
	})
}

// RecordEventPublished 记录事件发布结果
func RecordEventPublished(routingKey, result string) {
	IncCounterVec(EventsPublishedTotal, map[string]string{
		"routing_key": routingKey,
		"result":      result,
	})
}
