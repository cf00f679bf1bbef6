// Package recovery 把 panic 转换为日志与错误.
//
// 用于指标端点的 HTTP handler 以及 collector 的后台提交 goroutine，
// 单条记录的 panic 不应让整个转发进程退出.
package recovery

import (
	"fmt"
	"runtime"

	"github.com/Tsukikage7/tracefwd/logger"
)

// Handler panic 处理函数，p 为 panic 值.
type Handler func(p any, stack []byte)

// Options 配置选项.
type Options struct {
	// Logger 日志记录器，必需.
	Logger logger.Logger

	// Handler 在记录日志后调用.
	Handler Handler

	// StackSize 堆栈大小，默认 64KB.
	StackSize int
}

// Option 是配置函数.
type Option func(*Options)

// WithLogger 设置日志记录器.
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithHandler 设置自定义 panic 处理函数.
func WithHandler(h Handler) Option {
	return func(o *Options) {
		o.Handler = h
	}
}

// WithStackSize 设置堆栈大小.
func WithStackSize(size int) Option {
	return func(o *Options) {
		o.StackSize = size
	}
}

func applyOptions(opts []Option) *Options {
	o := &Options{StackSize: 64 * 1024}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		panic("recovery: logger is required")
	}
	return o
}

func captureStack(size int) []byte {
	stack := make([]byte, size)
	n := runtime.Stack(stack, false)
	return stack[:n]
}

// PanicError 表示被恢复的 panic.
type PanicError struct {
	Value any
	Stack []byte
}

// Error 实现 error 接口.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap 返回原始错误（如果 panic 值是 error）.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Do 执行 fn，fn 发生 panic 时记录日志并返回 *PanicError.
//
// 示例:
//
//	go func() {
//	    _ = recovery.Do("collector send", func() { send() }, recovery.WithLogger(log))
//	}()
func Do(name string, fn func(), opts ...Option) (err error) {
	o := applyOptions(opts)

	defer func() {
		if p := recover(); p != nil {
			stack := captureStack(o.StackSize)
			o.Logger.With(
				logger.String("task", name),
				logger.Any("panic", p),
				logger.String("stack", string(stack)),
			).Error("panic recovered")

			if o.Handler != nil {
				o.Handler(p, stack)
			}
			err = &PanicError{Value: p, Stack: stack}
		}
	}()

	fn()
	return nil
}
