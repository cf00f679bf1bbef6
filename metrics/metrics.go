// Package metrics 提供转发链路的 Prometheus 指标.
package metrics

import (
	"net/http"
	"time"
)

// Hook 结果标签取值.
const (
	OutcomeForwarded = "forwarded"
	OutcomeFiltered  = "filtered"
	OutcomeDropped   = "dropped"
)

// Collector 指标收集器接口.
type Collector interface {
	// RecordHook 记录一次 entry/exit 回调及其处理结果.
	RecordHook(method, outcome string)

	// RecordSubmission 记录一次 POST 的状态码、耗时和请求体大小.
	RecordSubmission(statusCode string, duration time.Duration, requestSize float64)

	// RecordFailure 记录一次未能发出或未得到响应的提交.
	RecordFailure(reason string)

	// SetInFlight 设置正在进行的提交数.
	SetInFlight(count int)

	GetHandler() http.Handler
	GetPath() string
}

// NewMetrics 创建指标收集器.
func NewMetrics(cfg *Config) (*PrometheusCollector, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	return NewPrometheus(cfg)
}

// MustNewMetrics 创建指标收集器，失败时 panic.
func MustNewMetrics(cfg *Config) *PrometheusCollector {
	c, err := NewMetrics(cfg)
	if err != nil {
		panic(err)
	}
	return c
}
