package websocket

import (
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
)

// ClientConfig 客户端配置
type ClientConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// 单条消息上限（字节），存档快照可能较大
	ReadLimit int64 `mapstructure:"read_limit"`

	SendQueueSize int `mapstructure:"send_queue_size"`

	Headers map[string]string `mapstructure:"headers"`

	Heartbeat HeartbeatConfig `mapstructure:"heartbeat"`
}

// HeartbeatConfig 心跳配置
type HeartbeatConfig struct {
	Enable   bool          `mapstructure:"enable"`
	Interval time.Duration `mapstructure:"interval"`
	// Timeout 超过该时长未收到 pong 视为断开
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultClientConfig 默认客户端配置
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		URL:           "ws://127.0.0.1:7420/rpc",
		DialTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		ReadLimit:     32 << 20,
		SendQueueSize: 64,
		Heartbeat: HeartbeatConfig{
			Enable:   true,
			Interval: 15 * time.Second,
			Timeout:  45 * time.Second,
		},
	}
}

// withDefaults 零值字段取默认值；Heartbeat.Enable 保持调用方的设置
func (c *ClientConfig) withDefaults() *ClientConfig {
	d := DefaultClientConfig()
	out := *c
	if out.DialTimeout <= 0 {
		out.DialTimeout = d.DialTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ReadLimit <= 0 {
		out.ReadLimit = d.ReadLimit
	}
	if out.SendQueueSize <= 0 {
		out.SendQueueSize = d.SendQueueSize
	}
	if out.Heartbeat.Interval <= 0 {
		out.Heartbeat.Interval = d.Heartbeat.Interval
	}
	if out.Heartbeat.Timeout <= 0 {
		out.Heartbeat.Timeout = d.Heartbeat.Timeout
	}
	return &out
}

// Validate 验证配置
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "websocket: parse url %q", c.URL), ErrInvalidConfig)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.Wrapf(ErrInvalidConfig, "unsupported scheme %q", u.Scheme)
	}
	if c.SendQueueSize <= 0 {
		return errors.Wrap(ErrInvalidConfig, "send_queue_size must be positive")
	}
	if c.Heartbeat.Enable && c.Heartbeat.Timeout <= c.Heartbeat.Interval {
		return errors.Wrap(ErrInvalidConfig, "heartbeat timeout must exceed interval")
	}
	return nil
}
