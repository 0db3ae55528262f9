package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerTestConfig struct {
	Gateway struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"gateway"`
	Quantity struct {
		DefaultCap      int      `mapstructure:"default_cap"`
		BulkConsumables []string `mapstructure:"bulk_consumables"`
	} `mapstructure:"quantity"`
}

// writeConfigFile 创建测试配置文件
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleYAML = `
gateway:
  url: "ws://127.0.0.1:7420/rpc"
  timeout: 5s
quantity:
  default_cap: 99
  bulk_consumables:
    - Quicksilver Bullets
    - Blood Vial
`

// TestManagerLoadFile 测试加载配置文件
func TestManagerLoadFile(t *testing.T) {
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, sampleYAML)))

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))

	assert.Equal(t, "ws://127.0.0.1:7420/rpc", cfg.Gateway.URL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 99, cfg.Quantity.DefaultCap)
	assert.Equal(t, []string{"Quicksilver Bullets", "Blood Vial"}, cfg.Quantity.BulkConsumables)

	assert.True(t, mgr.IsSet("gateway.url"))
	assert.Equal(t, 99, mgr.GetInt("quantity.default_cap"))
	assert.Contains(t, mgr.AllSettings(), "gateway")
}

func TestManagerLoadMissingFile(t *testing.T) {
	err := NewManager().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigFileNotFound))
}

func TestManagerUnmarshalKey(t *testing.T) {
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, sampleYAML)))

	var timeout time.Duration
	require.NoError(t, mgr.UnmarshalKey("gateway.timeout", &timeout))
	assert.Equal(t, 5*time.Second, timeout)
}

func TestManagerEnvOverride(t *testing.T) {
	t.Setenv("EDITOR_GATEWAY_URL", "ws://10.0.0.2:9000/rpc")

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, sampleYAML)))
	mgr.BindEnv("EDITOR")

	assert.Equal(t, "ws://10.0.0.2:9000/rpc", mgr.GetString("gateway.url"))
}

func TestManagerDefaults(t *testing.T) {
	mgr := NewManager(WithDefaults(map[string]any{"quantity.default_cap": 42, "render.enabled": true}))

	assert.Equal(t, 42, mgr.GetInt("quantity.default_cap"))
	assert.True(t, mgr.GetBool("render.enabled"))
	assert.Nil(t, mgr.Get("gateway.url"))
}

func TestManagerWatchRequiresFile(t *testing.T) {
	err := NewManager().Watch(func() {})
	assert.True(t, errors.Is(err, ErrConfigFileNotFound))
}

func TestWatcherReload(t *testing.T) {
	path := writeConfigFile(t, sampleYAML)
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	decode := func(m Manager, cfg *managerTestConfig) error { return m.Unmarshal(cfg) }
	w, err := NewWatcher(mgr, decode, nil)
	require.NoError(t, err)
	assert.Equal(t, 99, w.Current().Quantity.DefaultCap)

	var got *managerTestConfig
	w.OnChange(func(c *managerTestConfig) { got = c })

	// 直接触发重新解析，不依赖 fsnotify 的时序
	w.reload()
	require.NotNil(t, got)
	assert.Same(t, got, w.Current())
}

func TestWatcherKeepsOldConfigOnError(t *testing.T) {
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, sampleYAML)))

	fail := false
	var reported error
	decode := func(m Manager, cfg *managerTestConfig) error {
		if fail {
			return errors.New("broken file")
		}
		return m.Unmarshal(cfg)
	}
	w, err := NewWatcher(mgr, decode, func(err error) { reported = err })
	require.NoError(t, err)

	before := w.Current()
	fail = true
	w.reload()

	assert.Same(t, before, w.Current())
	assert.EqualError(t, reported, "broken file")
}

func TestLoadFileWithExplicitType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.conf")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	mgr := NewManager(WithConfigType("yaml"))
	require.NoError(t, mgr.LoadFile(path))

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 99, cfg.Quantity.DefaultCap)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
}
