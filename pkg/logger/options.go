package logger

import (
	"go.uber.org/zap/zapcore"
)

// Option 配置选项
type Option func(*BaseLogger)

// WithName 设置 logger 名称
func WithName(name string) Option {
	return func(l *BaseLogger) {
		l.name = name
	}
}

// WithGlobalFields 添加全局字段
func WithGlobalFields(fields ...interface{}) Option {
	return func(l *BaseLogger) {
		if len(fields)%2 != 0 {
			return
		}
		for i := 0; i < len(fields); i += 2 {
			if key, ok := fields[i].(string); ok {
				l.globalFields[key] = fields[i+1]
			}
		}
	}
}

// WithHooks 添加钩子
func WithHooks(hooks ...Hook) Option {
	return func(l *BaseLogger) {
		l.hooks = append(l.hooks, hooks...)
	}
}

// WithContextExtractor 替换 context 字段提取器
func WithContextExtractor(fn ContextFieldExtractor) Option {
	return func(l *BaseLogger) {
		if fn != nil {
			l.contextExtractor = fn
		}
	}
}

// WithCore 使用指定的 zapcore.Core 代替控制台/文件输出，主要用于测试捕获日志
func WithCore(core zapcore.Core) Option {
	return func(l *BaseLogger) {
		l.core = core
	}
}
