package logger

import (
	"context"

	"go.uber.org/zap"
)

// ContextFieldExtractor 从 context 提取字段的函数类型
type ContextFieldExtractor func(ctx context.Context) []zap.Field

type commandKey struct{}

type commandInfo struct {
	name string
	seq  uint64
}

// WithCommand 在 context 中记录当前处理的后端命令及其序列号
func WithCommand(ctx context.Context, command string, seq uint64) context.Context {
	return context.WithValue(ctx, commandKey{}, commandInfo{name: command, seq: seq})
}

// CommandFromContext 读取 WithCommand 写入的命令信息
func CommandFromContext(ctx context.Context) (string, uint64, bool) {
	if ctx == nil {
		return "", 0, false
	}
	info, ok := ctx.Value(commandKey{}).(commandInfo)
	return info.name, info.seq, ok
}

// CommandExtractor 默认提取器：附带 command 与 seq 字段
func CommandExtractor(ctx context.Context) []zap.Field {
	name, seq, ok := CommandFromContext(ctx)
	if !ok {
		return nil
	}
	return []zap.Field{zap.String("command", name), zap.Uint64("seq", seq)}
}
