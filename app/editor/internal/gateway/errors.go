package gateway

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrCommand 后端拒绝或执行命令失败
	ErrCommand = errors.New("gateway: command failed")
	// ErrDisconnected 等待回复期间连接断开
	ErrDisconnected = errors.New("gateway: transport disconnected")
	// ErrClosed transport 已关闭
	ErrClosed = errors.New("gateway: transport closed")
	// ErrUnknownCommand 服务端不认识的命令
	ErrUnknownCommand = errors.New("gateway: unknown command")
)

// RemoteError 后端返回的错误
type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// CommandError 一次命令调用失败；快照保持不变，错误必须交给调用方展示
type CommandError struct {
	Command string
	Seq     uint64
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (seq %d): %v", e.Command, e.Seq, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrCommand) 对所有 CommandError 成立
func (e *CommandError) Is(target error) bool {
	return target == ErrCommand
}

// IsRemote 错误是否来自后端拒绝
func IsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
