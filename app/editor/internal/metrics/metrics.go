package metrics

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lk2023060901/xdooria-editor/pkg/config"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	// Listen 非空时在该地址暴露 /metrics
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace: "editor",
	}
}

// EditorMetrics 编辑器指标
type EditorMetrics struct {
	config *Config

	// 命令指标
	CommandTotal    *prometheus.CounterVec   // 命令总数（按命令、结果）
	CommandDuration *prometheus.HistogramVec // 命令往返延迟

	// 过期回复（按命令）
	StaleReplies *prometheus.CounterVec

	// 资源加载失败次数
	AssetFailures prometheus.Counter
}

// New 创建编辑器指标
func New(cfg *Config) (*EditorMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge metrics config")
	}

	return &EditorMetrics{
		config: newCfg,

		CommandTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "commands_total",
				Help:      "后端命令总数",
			},
			[]string{"command", "result"}, // result: success/failed
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: newCfg.Namespace,
				Name:      "command_duration_seconds",
				Help:      "后端命令往返延迟（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
			},
			[]string{"command"},
		),
		StaleReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "stale_replies_total",
				Help:      "因序列号过期被丢弃的回复数",
			},
			[]string{"command"},
		),
		AssetFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: newCfg.Namespace,
				Name:      "asset_failures_total",
				Help:      "图片资源加载失败次数",
			},
		),
	}, nil
}

// Register 注册指标到 Prometheus Registry
func (m *EditorMetrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CommandTotal,
		m.CommandDuration,
		m.StaleReplies,
		m.AssetFailures,
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// RecordCommand 记录一次命令往返
func (m *EditorMetrics) RecordCommand(command string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.CommandTotal.WithLabelValues(command, result).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordStale 记录一次被丢弃的过期回复
func (m *EditorMetrics) RecordStale(command string) {
	if command == "" {
		command = "unknown"
	}
	m.StaleReplies.WithLabelValues(command).Inc()
}

// RecordAssetFailures 记录资源加载失败
func (m *EditorMetrics) RecordAssetFailures(n int) {
	m.AssetFailures.Add(float64(n))
}

// GetConfig 获取配置
func (m *EditorMetrics) GetConfig() *Config {
	return m.config
}
