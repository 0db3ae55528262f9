// pkg/websocket/types.go
package websocket

import "time"

// MessageType 消息类型，与 gorilla/websocket 的帧类型取值一致
type MessageType int

const (
	MessageTypeText   MessageType = 1
	MessageTypeBinary MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeText:
		return "text"
	case MessageTypeBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ConnectionState 连接状态
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Message 一帧消息
type Message struct {
	Type      MessageType
	Data      []byte
	Timestamp time.Time
}

// NewMessage 创建文本消息
func NewMessage(data []byte) *Message {
	return &Message{Type: MessageTypeText, Data: data, Timestamp: time.Now()}
}

// NewBinaryMessage 创建二进制消息
func NewBinaryMessage(data []byte) *Message {
	return &Message{Type: MessageTypeBinary, Data: data, Timestamp: time.Now()}
}
