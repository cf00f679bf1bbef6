package formatter

import (
	"github.com/Tsukikage7/tracefwd/logger"
	"github.com/Tsukikage7/tracefwd/metrics"
)

// Option 配置选项函数.
type Option func(*options)

type options struct {
	onlyError bool
	forwarder Forwarder
	logger    logger.Logger
	replay    ReplayFunc
	metrics   metrics.Collector
}

func defaultOptions() *options {
	return &options{}
}

// WithOnlyError 启用错误模式，只转发携带异常的记录.
func WithOnlyError(onlyError bool) Option {
	return func(o *options) {
		o.onlyError = onlyError
	}
}

// WithForwarder 设置记录发送器（必需）.
func WithForwarder(fwd Forwarder) Option {
	return func(o *options) {
		o.forwarder = fwd
	}
}

// WithLogger 设置日志实例（必需）.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithReplay 设置错误模式下补发入口记录的重入函数，默认为 Formatter.OnEntry.
func WithReplay(fn ReplayFunc) Option {
	return func(o *options) {
		o.replay = fn
	}
}

// WithMetrics 设置指标收集器.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}
