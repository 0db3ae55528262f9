package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/lk2023060901/xdooria-editor/pkg/config"
)

var (
	defaultLogger Logger
	defaultMu     sync.RWMutex
)

// InitDefaultFromEnv 按环境变量覆盖默认配置并设置默认 logger
// 环境变量前缀: EDITOR_LOG_
func InitDefaultFromEnv() error {
	env := &Config{}
	if level := os.Getenv("EDITOR_LOG_LEVEL"); level != "" {
		env.Level = Level(strings.ToLower(level))
	}
	if format := os.Getenv("EDITOR_LOG_FORMAT"); format != "" {
		env.Format = Format(strings.ToLower(format))
	}
	if path := os.Getenv("EDITOR_LOG_PATH"); path != "" {
		env.EnableFile = true
		env.OutputPath = path
	}
	if os.Getenv("EDITOR_LOG_DEVELOPMENT") == "true" {
		env.Development = true
	}

	cfg, err := config.MergeConfig(DefaultConfig(), env)
	if err != nil {
		return err
	}
	l, err := New(cfg)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// SetDefault 设置默认 logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default 获取默认 logger，未设置时返回 NoopLogger
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultLogger == nil {
		return NewNoop()
	}
	return defaultLogger
}
