package tracehook

import "github.com/Tsukikage7/tracefwd/logger"

// Option 配置选项函数.
type Option func(*options)

type options struct {
	logger    logger.Logger
	entryData bool
}

func defaultOptions() *options {
	return &options{}
}

// WithLogger 设置日志实例（必需）.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEntryData 出口事件附加对应的入口记录，错误模式下需要开启.
func WithEntryData(enabled bool) Option {
	return func(o *options) {
		o.entryData = enabled
	}
}
