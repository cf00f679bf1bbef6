package collector

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tsukikage7/tracefwd/logger"
	"github.com/Tsukikage7/tracefwd/metrics"
)

// Option 配置选项函数.
type Option func(*options)

// options 客户端配置.
type options struct {
	name           string
	endpoint       string
	logger         logger.Logger
	timeout        time.Duration
	headers        map[string]string
	transport      http.RoundTripper
	metrics        metrics.Collector
	tracerProvider trace.TracerProvider
	propagator     propagation.TextMapPropagator
}

// defaultOptions 返回默认配置.
func defaultOptions() *options {
	return &options{
		name:           "Collector",
		endpoint:       DefaultEndpoint,
		timeout:        30 * time.Second,
		headers:        make(map[string]string),
		tracerProvider: otel.GetTracerProvider(),
		propagator:     otel.GetTextMapPropagator(),
	}
}

// WithName 设置客户端名称（用于日志）.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithEndpoint 设置 collector 地址，默认 http://localhost:9596.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithLogger 设置日志实例（必需）.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTimeout 设置单次请求超时.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHeader 添加默认请求头.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers[key] = value
	}
}

// WithHeaders 设置多个默认请求头.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithTransport 设置自定义 Transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithMetrics 设置指标收集器.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithTracerProvider 设置 TracerProvider，默认使用全局 provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithPropagator 设置 trace 传播器，默认使用全局传播器.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(o *options) {
		if p != nil {
			o.propagator = p
		}
	}
}
