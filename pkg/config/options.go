package config

// Option 配置选项函数
type Option func(*manager)

// WithDefaults 设置默认配置值，key 使用 "." 分隔的路径
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithConfigType 文件没有可识别的扩展名时（例如 editor.conf）指定格式
func WithConfigType(configType string) Option {
	return func(m *manager) {
		m.v.SetConfigType(configType)
	}
}
