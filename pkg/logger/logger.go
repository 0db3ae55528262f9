// pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-editor/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*BaseLogger)(nil)

// BaseLogger 基于 zap 的日志记录器实现
type BaseLogger struct {
	*zap.Logger
	config           *Config
	name             string
	globalFields     map[string]interface{}
	hooks            []Hook
	contextExtractor ContextFieldExtractor
	core             zapcore.Core
}

// New 创建新的 BaseLogger
// 用户只传递部分配置时，其余字段取 DefaultConfig
func New(cfg *Config, opts ...Option) (*BaseLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "logger: merge config")
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	l := &BaseLogger{
		config:           merged,
		globalFields:     make(map[string]interface{}),
		contextExtractor: CommandExtractor,
	}
	for _, opt := range opts {
		opt(l)
	}
	for k, v := range merged.GlobalFields {
		l.globalFields[k] = v
	}
	if len(merged.RedactKeys) > 0 {
		l.hooks = append(l.hooks, SensitiveDataHook(merged.RedactKeys))
	}

	zl, err := l.build()
	if err != nil {
		return nil, err
	}
	l.Logger = zl
	return l, nil
}

// build 构建 zap logger
func (l *BaseLogger) build() (*zap.Logger, error) {
	core := l.core
	if core == nil {
		var encoder zapcore.Encoder
		if l.config.Format == ConsoleFormat {
			encoder = zapcore.NewConsoleEncoder(l.encoderConfig())
		} else {
			encoder = zapcore.NewJSONEncoder(l.encoderConfig())
		}

		writers := make([]zapcore.WriteSyncer, 0, 2)
		if l.config.EnableConsole {
			writers = append(writers, zapcore.AddSync(os.Stdout))
		}
		if l.config.EnableFile {
			w, err := NewRotationWriter(&l.config.Rotation, l.config.OutputPath)
			if err != nil {
				return nil, errors.Wrap(err, "logger: create rotation writer")
			}
			writers = append(writers, zapcore.AddSync(w))
		}
		core = zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), parseLevel(l.config.Level))
	}

	if len(l.hooks) > 0 {
		core = NewHookedCore(core, l.hooks...)
	}

	options := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if l.config.EnableStacktrace {
		options = append(options, zap.AddStacktrace(parseLevel(l.config.StacktraceLevel)))
	}
	if l.config.Development {
		options = append(options, zap.Development())
	}

	zl := zap.New(core, options...)
	if len(l.globalFields) > 0 {
		fields := make([]zap.Field, 0, len(l.globalFields))
		for k, v := range l.globalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}
	if l.name != "" {
		zl = zl.Named(l.name)
	}
	return zl, nil
}

func (l *BaseLogger) encoderConfig() zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
	}
	if l.config.TimeFormat != "" {
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(l.config.TimeFormat)
	}
	if l.config.Development {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec
}

func parseLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *BaseLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toZapFields(keysAndValues)...)
}

func (l *BaseLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) contextFields(ctx context.Context, keysAndValues []interface{}) []zap.Field {
	return append(l.contextExtractor(ctx), toZapFields(keysAndValues)...)
}

// Named 创建具名 logger，名称按 zap 规则以 "." 拼接
func (l *BaseLogger) Named(name string) Logger {
	c := l.clone()
	c.Logger = l.Logger.Named(name)
	c.name = name
	return c
}

// WithFields 添加字段
func (l *BaseLogger) WithFields(keysAndValues ...interface{}) Logger {
	fields := toZapFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	c := l.clone()
	c.Logger = l.Logger.With(fields...)
	return c
}

func (l *BaseLogger) clone() *BaseLogger {
	return &BaseLogger{
		Logger:           l.Logger,
		config:           l.config,
		name:             l.name,
		globalFields:     l.globalFields,
		hooks:            l.hooks,
		contextExtractor: l.contextExtractor,
		core:             l.core,
	}
}

// Sync 同步日志
func (l *BaseLogger) Sync() error {
	return l.Logger.Sync()
}

// toZapFields 将 key-value 对转换为 zap.Field
// 也接受直接传入的 zap.Field；error 值统一使用 zap.Error 编码
func toZapFields(keysAndValues []interface{}) []zap.Field {
	if len(keysAndValues) == 0 {
		return nil
	}
	if _, ok := keysAndValues[0].(zap.Field); ok {
		fields := make([]zap.Field, 0, len(keysAndValues))
		for _, v := range keysAndValues {
			if f, ok := v.(zap.Field); ok {
				fields = append(fields, f)
			}
		}
		return fields
	}
	if len(keysAndValues)%2 != 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
