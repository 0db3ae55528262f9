package config

import (
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Manager 配置管理器接口
type Manager interface {
	// LoadFile 加载配置文件（YAML、JSON、TOML 等）
	LoadFile(path string) error
	// BindEnv 绑定环境变量，prefix 为 "EDITOR" 时匹配 EDITOR_GATEWAY_URL
	BindEnv(prefix string)
	// Unmarshal 解析整个配置到结构体
	Unmarshal(v any) error
	// UnmarshalKey 解析指定路径的配置，例如 "gateway" 或 "quantity.default_cap"
	UnmarshalKey(key string, v any) error
	Get(key string) any
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	// Watch 监听配置文件变化
	Watch(callback func()) error
	IsSet(key string) bool
	AllSettings() map[string]any
}

type manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	callbacks []func()
	watching  bool
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{v: viper.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Mark(errors.Wrapf(err, "config: load %s", path), ErrConfigFileNotFound)
		}
		return errors.Wrapf(err, "config: stat %s", path)
	}

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "config: read %s", path)
	}
	return nil
}

func (m *manager) BindEnv(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()
}

// decodeHook 时长字符串与逗号分隔列表（环境变量）的解码
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v, decodeHook()); err != nil {
		return errors.Wrap(err, "config: unmarshal")
	}
	return nil
}

func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, v, decodeHook()); err != nil {
		return errors.Wrapf(err, "config: unmarshal key %s", key)
	}
	return nil
}

func (m *manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.Get(key)
}

func (m *manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

func (m *manager) GetInt(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetInt(key)
}

func (m *manager) GetBool(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetBool(key)
}

// Watch 注册回调；首次调用时启动 fsnotify 监听
func (m *manager) Watch(callback func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.v.ConfigFileUsed() == "" {
		return errors.Wrap(ErrConfigFileNotFound, "config: watch before load")
	}
	m.callbacks = append(m.callbacks, callback)
	if m.watching {
		return nil
	}
	m.watching = true

	m.v.OnConfigChange(func(fsnotify.Event) {
		m.mu.RLock()
		callbacks := append([]func(){}, m.callbacks...)
		m.mu.RUnlock()

		for _, cb := range callbacks {
			cb()
		}
	})
	m.v.WatchConfig()
	return nil
}

func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

func (m *manager) AllSettings() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.AllSettings()
}
