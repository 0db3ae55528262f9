package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

var (
	ErrAppAlreadyRunning = errors.New("application is already running")
)

// Server 随应用启动、停止的服务（如 /metrics 监听）
type Server interface {
	Start() error
	Stop() error
}

// Closer 资源清理接口（如后端连接、缓存）
type Closer interface {
	Close() error
}

// Task 应用的主流程，ctx 在收到信号或 Shutdown 时取消
type Task func(ctx context.Context) error

// BaseApp 管理服务、任务与资源的生命周期
type BaseApp struct {
	opts    Options
	logger  logger.Logger
	servers []Server
	closers []Closer
	tasks   []Task

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex

	// 状态管理
	started atomic.Bool
	closed  atomic.Bool
}

// NewBaseApp 创建应用
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &BaseApp{
		opts:   o,
		logger: o.Logger.Named(o.Name),
		ctx:    ctx,
		cancel: cancel,
	}

	// 带有日志配置时立即初始化
	if o.LogConfig != nil {
		if l, err := logger.New(o.LogConfig); err == nil {
			a.logger = l.Named(o.Name)
		}
	}

	return a
}

// Logger 应用日志
func (a *BaseApp) Logger() logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// Context 应用上下文，Shutdown 时取消
func (a *BaseApp) Context() context.Context {
	return a.ctx
}

// Run 启动服务与任务并阻塞，直到收到信号、任务结束（未设置 KeepAlive）或任务出错
// 返回第一个失败任务的错误
func (a *BaseApp) Run() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	fmt.Println(info.String())

	a.logger.Info("application starting",
		"name", a.opts.Name,
		"version", a.opts.Version,
		"commit", info.GitCommit,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
	)

	a.mu.RLock()
	servers := append([]Server(nil), a.servers...)
	tasks := append([]Task(nil), a.tasks...)
	a.mu.RUnlock()

	for _, srv := range servers {
		if err := srv.Start(); err != nil {
			a.logger.Error("failed to start server", "error", err)
			_ = a.Shutdown()
			return err
		}
	}

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	for _, task := range tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			if err := t(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
				errOnce.Do(func() { runErr = err })
				a.logger.Error("task failed", "error", err)
				a.cancel()
			}
		}(task)
	}
	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()
	var tasksDone <-chan struct{}
	if !a.opts.KeepAlive && len(tasks) > 0 {
		tasksDone = allDone
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-tasksDone:
		a.logger.Info("tasks finished, shutting down")
	case <-a.ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}

	if err := a.Shutdown(); err != nil {
		return err
	}
	wg.Wait()
	return runErr
}

// Shutdown 停止服务并逆序关闭资源
func (a *BaseApp) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel()
	a.logger.Info("application shutting down")

	var wg sync.WaitGroup
	for _, srv := range a.servers {
		wg.Add(1)
		go func(s Server) {
			defer wg.Done()
			if err := s.Stop(); err != nil {
				a.logger.Error("failed to stop server", "error", err)
			}
		}(srv)
	}

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		a.logger.Info("all servers stopped")
	case <-time.After(a.opts.StopTimeout):
		a.logger.Warn("shutdown timeout, forcing exit")
	}

	// 逆序关闭（LIFO）
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
		}
	}

	a.logger.Info("application exited")
	_ = a.logger.Sync()
	return nil
}

// AppendServer 添加服务
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加资源清理组件
func (a *BaseApp) AppendCloser(closer ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, closer...)
}

// AppendTask 添加主流程任务
func (a *BaseApp) AppendTask(task ...Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tasks = append(a.tasks, task...)
}

// CloserFunc 把函数适配为 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
