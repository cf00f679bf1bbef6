// Package server 提供 tracefwd 旁路 HTTP 端点（指标暴露）的服务器.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/Tsukikage7/tracefwd/logger"
)

// HTTP HTTP 服务器.
type HTTP struct {
	opts    *options
	handler http.Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	ready    chan struct{}
}

// NewHTTP 创建 HTTP 服务器.
//
// 示例:
//
//	mux := http.NewServeMux()
//	mux.Handle(m.GetPath(), m.GetHandler())
//
//	srv := server.NewHTTP(mux,
//	    server.WithName("metrics"),
//	    server.WithAddr(":9597"),
//	    server.WithLogger(log),
//	)
func NewHTTP(handler http.Handler, opts ...Option) *HTTP {
	if handler == nil {
		panic(ErrNilHandler)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &HTTP{
		opts:    o,
		handler: handler,
		ready:   make(chan struct{}),
	}
}

// Start 监听并服务，直到 ctx 取消或监听失败.
func (s *HTTP) Start(ctx context.Context) error {
	if s.opts.addr == "" {
		return ErrAddrEmpty
	}

	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return ErrServerRunning
	}

	ln, err := net.Listen("tcp", s.opts.addr)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.readTimeout,
		WriteTimeout: s.opts.writeTimeout,
		IdleTimeout:  s.opts.idleTimeout,
	}
	srv := s.server
	close(s.ready)
	s.mu.Unlock()

	s.logDebugf("服务器启动 [addr:%s]", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	return nil
}

// Stop 停止 HTTP 服务器.
func (s *HTTP) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logDebug("服务器停止中...")
	return srv.Shutdown(ctx)
}

// Ready 返回在开始监听后关闭的 channel.
func (s *HTTP) Ready() <-chan struct{} {
	return s.ready
}

// Name 返回服务器名称.
func (s *HTTP) Name() string {
	return s.opts.name
}

// Addr 返回实际监听地址，未启动时返回配置地址.
func (s *HTTP) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.addr
}

// 日志辅助方法.

func (s *HTTP) logger() logger.Logger {
	return s.opts.logger
}

func (s *HTTP) logDebug(msg string) {
	if log := s.logger(); log != nil {
		log.Debug("[" + s.opts.name + "] " + msg)
	}
}

func (s *HTTP) logDebugf(format string, args ...any) {
	if log := s.logger(); log != nil {
		log.Debugf("["+s.opts.name+"] "+format, args...)
	}
}
