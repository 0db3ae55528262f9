// pkg/websocket/errors.go
package websocket

import "github.com/cockroachdb/errors"

var (
	ErrInvalidConfig = errors.New("websocket: invalid config")

	ErrConnectionClosed = errors.New("websocket: connection closed")
	ErrAlreadyConnected = errors.New("websocket: already connected")
	ErrNotConnected     = errors.New("websocket: not connected")

	ErrSendQueueFull = errors.New("websocket: send queue full")

	ErrHeartbeatTimeout = errors.New("websocket: heartbeat timeout")
)
