package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

// Options 应用配置选项
type Options struct {
	ID          string
	Name        string
	Version     string
	StopTimeout time.Duration
	Logger      logger.Logger

	// LogConfig 非空时按该配置创建日志
	LogConfig *logger.Config

	// KeepAlive 任务结束后继续运行，直到收到信号
	KeepAlive bool
}

// Option 配置函数
type Option func(*Options)

// DefaultOptions 默认配置
func DefaultOptions() Options {
	info := GetInfo()
	return Options{
		ID:          uuid.New().String(),
		Name:        info.AppName,
		Version:     info.Version,
		StopTimeout: 10 * time.Second,
		Logger:      logger.Default(),
	}
}

// WithLogConfig 设置日志配置
func WithLogConfig(cfg *logger.Config) Option {
	return func(o *Options) { o.LogConfig = cfg }
}

// WithLogger 设置应用日志器
func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithID 设置应用 ID
func WithID(id string) Option {
	return func(o *Options) { o.ID = id }
}

// WithName 设置应用名称
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithVersion 设置应用版本
func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithStopTimeout 设置停止超时时间
func WithStopTimeout(t time.Duration) Option {
	return func(o *Options) { o.StopTimeout = t }
}

// WithKeepAlive 任务结束后保持运行
func WithKeepAlive(keep bool) Option {
	return func(o *Options) { o.KeepAlive = keep }
}
