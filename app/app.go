// Package app 管理 tracefwd 进程的生命周期.
//
// Application 在后台启动旁路服务器（例如指标端点），运行主任务，
// 主任务结束、收到信号或服务器失败时按优先级执行清理任务.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/Tsukikage7/tracefwd/logger"
)

// ErrRunning 应用正在运行.
var ErrRunning = errors.New("app: 应用正在运行")

// Server 旁路服务器接口.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Name() string
	Addr() string
}

// Job 主任务，返回即进入关闭阶段.
type Job func(ctx context.Context) error

// Application 应用程序.
type Application struct {
	opts    *options
	servers []Server
	mu      sync.Mutex
	running bool
}

// New 创建应用程序，必需设置 WithLogger，否则会 panic.
func New(opts ...Option) *Application {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		panic("app: logger is required")
	}

	return &Application{opts: o}
}

// Use 注册服务器.
func (a *Application) Use(servers ...Server) *Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, servers...)
	return a
}

// Name 获取应用名称.
func (a *Application) Name() string {
	return a.opts.name
}

// Version 获取应用版本.
func (a *Application) Version() string {
	return a.opts.version
}

// Run 运行主任务直到结束，然后关闭服务器并执行清理.
// 因信号或取消导致的 context.Canceled 不作为错误返回.
func (a *Application) Run(ctx context.Context, job Job) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrRunning
	}
	a.running = true
	servers := append([]Server(nil), a.servers...)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	signals := a.opts.signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	sigCtx, stopSignals := signal.NotifyContext(ctx, signals...)
	defer stopSignals()

	runCtx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	a.opts.logger.With(
		logger.String("name", a.opts.name),
		logger.String("version", a.opts.version),
	).Info("[App] starting")

	srvErr := a.start(runCtx, servers)

	jobDone := make(chan error, 1)
	go func() {
		jobDone <- job(runCtx)
	}()

	var jobErr error
	select {
	case jobErr = <-jobDone:
	case err := <-srvErr:
		a.opts.logger.With(logger.Err(err)).Error("[App] server failed")
		cancel()
		jobErr = a.awaitJob(jobDone)
		if jobErr == nil {
			jobErr = err
		}
	case <-runCtx.Done():
		a.opts.logger.Info("[App] context cancelled")
		jobErr = a.awaitJob(jobDone)
	}

	a.shutdown(servers)

	if errors.Is(jobErr, context.Canceled) {
		return nil
	}
	return jobErr
}

// awaitJob 在取消后等待主任务退出，最多等待 gracefulTimeout.
func (a *Application) awaitJob(jobDone <-chan error) error {
	timer := time.NewTimer(a.opts.gracefulTimeout)
	defer timer.Stop()

	select {
	case err := <-jobDone:
		return err
	case <-timer.C:
		a.opts.logger.Warn("[App] job did not exit before timeout")
		return context.Canceled
	}
}

func (a *Application) start(ctx context.Context, servers []Server) <-chan error {
	errCh := make(chan error, len(servers))

	for _, srv := range servers {
		go func(s Server) {
			a.opts.logger.With(
				logger.String("server", s.Name()),
				logger.String("addr", s.Addr()),
			).Info("[App] starting server")
			if err := s.Start(ctx); err != nil {
				errCh <- err
			}
		}(srv)
	}

	return errCh
}

func (a *Application) shutdown(servers []Server) {
	a.opts.logger.With(
		logger.Duration("timeout", a.opts.gracefulTimeout),
	).Info("[App] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.opts.gracefulTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func(s Server) {
			defer wg.Done()
			if err := s.Stop(shutdownCtx); err != nil {
				a.opts.logger.With(
					logger.String("server", s.Name()),
					logger.Err(err),
				).Error("[App] server stop failed")
			}
		}(srv)
	}
	wg.Wait()

	a.runCleanups(shutdownCtx)

	a.opts.logger.Info("[App] stopped")
}

func (a *Application) runCleanups(ctx context.Context) {
	if len(a.opts.cleanups) == 0 {
		return
	}

	cleanups := make([]cleanup, len(a.opts.cleanups))
	copy(cleanups, a.opts.cleanups)
	sort.SliceStable(cleanups, func(i, j int) bool {
		return cleanups[i].priority < cleanups[j].priority
	})

	for _, c := range cleanups {
		if err := c.fn(ctx); err != nil {
			a.opts.logger.With(
				logger.String("cleanup", c.name),
				logger.Err(err),
			).Error("[App] cleanup failed")
			continue
		}
		a.opts.logger.With(logger.String("cleanup", c.name)).Debug("[App] cleanup done")
	}
}
