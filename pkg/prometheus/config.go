package prometheus

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("prometheus: invalid config")
	// ErrExporterClosed 导出器已关闭
	ErrExporterClosed = errors.New("prometheus: exporter closed")
)

const (
	defaultPath    = "/metrics"
	defaultTimeout = 10 * time.Second
)

// Config 导出配置；Listen 为空时只持有 Registry，不监听端口
type Config struct {
	Listen  string        `mapstructure:"listen" json:"listen" yaml:"listen"`
	Path    string        `mapstructure:"path" json:"path" yaml:"path"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// Runtime 是否注册 Go 运行时与进程采集器
	Runtime bool `mapstructure:"runtime" json:"runtime" yaml:"runtime"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Path:    defaultPath,
		Timeout: defaultTimeout,
		Runtime: true,
	}
}

// Serving 是否需要独立 HTTP 服务
func (c *Config) Serving() bool {
	return c.Listen != ""
}

// Validate 补齐缺省值
func (c *Config) Validate() error {
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.Path[0] != '/' {
		return errors.Wrapf(ErrInvalidConfig, "path %q must start with /", c.Path)
	}
	if c.Timeout < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative timeout %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}
