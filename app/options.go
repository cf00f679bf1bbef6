package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/Tsukikage7/tracefwd/logger"
)

// CleanupFunc 关闭阶段执行的清理函数，ctx 受 gracefulTimeout 约束.
type CleanupFunc func(ctx context.Context) error

// cleanup 一个已注册的清理任务，priority 越小越先执行.
type cleanup struct {
	name     string
	fn       CleanupFunc
	priority int
}

type options struct {
	name            string
	version         string
	logger          logger.Logger
	gracefulTimeout time.Duration
	signals         []os.Signal
	cleanups        []cleanup
}

func defaultOptions() *options {
	return &options{
		name:            "tracefwd",
		version:         "dev",
		gracefulTimeout: 30 * time.Second,
	}
}

// Option 配置选项.
type Option func(*options)

// WithName 设置应用名称.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithVersion 设置应用版本.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// WithLogger 设置日志记录器（必需）.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithGracefulTimeout 设置关闭阶段的总超时，包括等待在途提交. 非正值被忽略.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithSignals 设置触发关闭的系统信号，默认 SIGINT 与 SIGTERM.
func WithSignals(signals ...os.Signal) Option {
	return func(o *options) { o.signals = signals }
}

// WithCleanup 注册关闭阶段的清理任务，例如等待 collector 在途提交.
func WithCleanup(name string, fn CleanupFunc, priority int) Option {
	return func(o *options) {
		o.cleanups = append(o.cleanups, cleanup{name: name, fn: fn, priority: priority})
	}
}

// WithCloser 注册 io.Closer 作为清理任务，例如事件输入文件.
func WithCloser(name string, c io.Closer, priority int) Option {
	return WithCleanup(name, func(context.Context) error {
		return c.Close()
	}, priority)
}
