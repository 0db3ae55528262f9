// Package prometheus 持有指标 Registry，并可选地以独立 HTTP 服务暴露 /metrics。
package prometheus

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

// Exporter 编辑器指标导出器
type Exporter struct {
	config   *Config
	registry *prometheus.Registry
	logger   logger.Logger

	// HTTP 服务器
	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr

	// 状态
	closed atomic.Bool
}

// New 创建导出器；HTTP 服务在 Start 时启动
func New(cfg *Config, l logger.Logger) (*Exporter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NewNoop()
	}

	c := &Exporter{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		logger:   l.Named("prometheus"),
	}

	if cfg.Runtime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return c, nil
}

// Registry 底层 Registry，供业务指标注册
func (c *Exporter) Registry() *prometheus.Registry {
	return c.registry
}

// Handler OpenMetrics 格式的 /metrics 处理器
func (c *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	)
}

// Config 获取配置
func (c *Exporter) Config() *Config {
	return c.config
}

// Addr 实际监听地址，未启动时为 nil
func (c *Exporter) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Start 启动独立的 HTTP 服务器；未启用时直接返回
// 先完成监听，端口占用等错误在这里返回
func (c *Exporter) Start() error {
	if c.closed.Load() {
		return ErrExporterClosed
	}
	if !c.config.Serving() {
		return nil
	}

	ln, err := net.Listen("tcp", c.config.Listen)
	if err != nil {
		return errors.Wrapf(err, "prometheus: listen %s", c.config.Listen)
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, c.Handler())

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  c.config.Timeout,
		WriteTimeout: c.config.Timeout,
	}

	c.mu.Lock()
	c.httpServer = srv
	c.addr = ln.Addr()
	c.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server stopped", "error", err)
		}
	}()
	c.logger.Info("metrics server listening", "addr", ln.Addr().String(), "path", c.config.Path)
	return nil
}

// Stop 关闭 HTTP 服务器
func (c *Exporter) Stop() error {
	return c.Close()
}

// Close 关闭导出器，重复关闭返回 ErrExporterClosed
func (c *Exporter) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrExporterClosed
	}

	c.mu.Lock()
	srv := c.httpServer
	c.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}

	return nil
}

// IsClosed 是否已关闭
func (c *Exporter) IsClosed() bool {
	return c.closed.Load()
}
