package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector Prometheus 指标收集器实现.
type PrometheusCollector struct {
	config *Config

	hooksTotal         *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	submissionDuration prometheus.Histogram
	requestSize        prometheus.Histogram
	failuresTotal      *prometheus.CounterVec
	inFlight           prometheus.Gauge

	registry *prometheus.Registry
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus 创建 Prometheus 指标收集器.
func NewPrometheus(cfg *Config) (*PrometheusCollector, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "tracefwd"
	}

	// 独立注册表，避免与默认注册表冲突
	registry := prometheus.NewRegistry()

	c := &PrometheusCollector{
		config:   cfg,
		registry: registry,
	}

	c.hooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "formatter",
			Name:      "hooks_total",
			Help:      "Total number of entry/exit hooks handled, by outcome",
		},
		[]string{"method", "outcome"},
	)

	c.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "submissions_total",
			Help:      "Total number of records posted to the collector, by status code",
		},
		[]string{"status_code"},
	)

	c.submissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "submission_duration_seconds",
			Help:      "Collector POST duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	c.requestSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "request_size_bytes",
			Help:      "Collector POST body size in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 6),
		},
	)

	c.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "failures_total",
			Help:      "Total number of submissions that got no response",
		},
		[]string{"reason"},
	)

	c.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "in_flight",
			Help:      "Number of collector submissions in flight",
		},
	)

	collectors := []prometheus.Collector{
		c.hooksTotal,
		c.submissionsTotal,
		c.submissionDuration,
		c.requestSize,
		c.failuresTotal,
		c.inFlight,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegisterMetric, err)
		}
	}

	return c, nil
}

// RecordHook 记录 hook 处理结果.
func (c *PrometheusCollector) RecordHook(method, outcome string) {
	c.hooksTotal.WithLabelValues(method, outcome).Inc()
}

// RecordSubmission 记录一次完成的提交.
func (c *PrometheusCollector) RecordSubmission(statusCode string, duration time.Duration, requestSize float64) {
	c.submissionsTotal.WithLabelValues(statusCode).Inc()
	c.submissionDuration.Observe(duration.Seconds())
	c.requestSize.Observe(requestSize)
}

// RecordFailure 记录一次失败的提交.
func (c *PrometheusCollector) RecordFailure(reason string) {
	c.failuresTotal.WithLabelValues(reason).Inc()
}

// SetInFlight 更新在途提交数.
func (c *PrometheusCollector) SetInFlight(count int) {
	c.inFlight.Set(float64(count))
}

// Registry 返回底层注册表.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// GetHandler 返回 metrics 的 HTTP 处理器.
func (c *PrometheusCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetPath 返回 metrics 路径.
func (c *PrometheusCollector) GetPath() string {
	if c.config.Path == "" {
		return "/metrics"
	}
	return c.config.Path
}
