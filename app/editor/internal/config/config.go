// Package config 编辑器进程配置：YAML 文件 + EDITOR_ 环境变量 + 默认值。
package config

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/controller"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/index"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/metrics"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/render"
	pkgconfig "github.com/lk2023060901/xdooria-editor/pkg/config"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
	"github.com/lk2023060901/xdooria-editor/pkg/serializer"
	"github.com/lk2023060901/xdooria-editor/pkg/websocket"
)

// EnvPrefix 环境变量前缀，EDITOR_GATEWAY_WS_URL 对应 gateway.ws.url
const EnvPrefix = "EDITOR"

// GatewayConfig 后端连接
type GatewayConfig struct {
	WS websocket.ClientConfig `mapstructure:"ws"`
	// Codec 帧编码：json / msgpack
	Codec string `mapstructure:"codec" validate:"omitempty,oneof=json msgpack"`
	// CallTimeout 单条命令等待回复的上限
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"gte=0"`
}

// AssetsConfig 图片资源
type AssetsConfig struct {
	// Dir 资源根目录，对应资源键中的 "/"
	Dir    string              `mapstructure:"dir"`
	Loader render.LoaderConfig `mapstructure:"loader"`
}

// Config 编辑器配置
type Config struct {
	Log      logger.Config             `mapstructure:"log"`
	Gateway  GatewayConfig             `mapstructure:"gateway"`
	Assets   AssetsConfig              `mapstructure:"assets"`
	Quantity controller.QuantityConfig `mapstructure:"quantity"`
	Index    index.Config              `mapstructure:"index"`
	Metrics  metrics.Config            `mapstructure:"metrics"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Log: *logger.DefaultConfig(),
		Gateway: GatewayConfig{
			WS:          *websocket.DefaultClientConfig(),
			Codec:       "json",
			CallTimeout: 10 * time.Second,
		},
		Assets: AssetsConfig{
			Dir:    "assets",
			Loader: *render.DefaultLoaderConfig(),
		},
		Quantity: *controller.DefaultQuantityConfig(),
		Index:    *index.DefaultConfig(),
		Metrics:  *metrics.DefaultConfig(),
	}
}

// envKeys 只有 viper 已知的键才会从环境变量读取，文件缺省时依赖这里的登记
func envKeys() map[string]any {
	d := Default()
	return map[string]any{
		"log.level":             string(d.Log.Level),
		"log.format":            string(d.Log.Format),
		"gateway.ws.url":        d.Gateway.WS.URL,
		"gateway.codec":         d.Gateway.Codec,
		"gateway.call_timeout":  d.Gateway.CallTimeout,
		"assets.dir":            d.Assets.Dir,
		"assets.loader.workers": d.Assets.Loader.Workers,
		"quantity.default_cap":  d.Quantity.DefaultCap,
		"quantity.storage_cap":  d.Quantity.StorageCap,
		"metrics.listen":        d.Metrics.Listen,
	}
}

// NewManager 创建绑定了 EDITOR_ 环境变量的配置管理器
func NewManager() pkgconfig.Manager {
	mgr := pkgconfig.NewManager(pkgconfig.WithDefaults(envKeys()))
	mgr.BindEnv(EnvPrefix)
	return mgr
}

// Load 读取配置；path 为空时只使用环境变量与默认值
func Load(path string) (*Config, error) {
	mgr := NewManager()
	if path != "" {
		if err := mgr.LoadFile(path); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := Decode(mgr, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode 把 mgr 中的配置合并到默认值上并校验
func Decode(mgr pkgconfig.Manager, out *Config) error {
	var raw Config
	if err := mgr.Unmarshal(&raw); err != nil {
		return err
	}
	cfg, err := pkgconfig.MergeConfig(Default(), &raw)
	if err != nil {
		return errors.Wrap(err, "config: apply defaults")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	*out = *cfg
	return nil
}

// Validate 校验 tag 规则以及各组件自身的约束
func (c *Config) Validate() error {
	if err := pkgconfig.NewValidator().Validate(c); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Mark(errors.Wrap(err, "config: log"), pkgconfig.ErrValidationFailed)
	}
	if err := c.Gateway.WS.Validate(); err != nil {
		return errors.Mark(errors.Wrap(err, "config: gateway.ws"), pkgconfig.ErrValidationFailed)
	}
	return nil
}

// Codec 按 gateway.codec 选择帧编码
func (c *Config) Codec() (serializer.Serializer, error) {
	return serializer.ByName(c.Gateway.Codec)
}

// Watch 监听配置文件，变化后重新解析；解析失败保留旧配置并回调 onError
func Watch(path string, onError func(error)) (*pkgconfig.Watcher[Config], error) {
	mgr := NewManager()
	if err := mgr.LoadFile(path); err != nil {
		return nil, err
	}
	return pkgconfig.NewWatcher(mgr, Decode, onError)
}
