package gateway

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/pkg/logger"
	"github.com/lk2023060901/xdooria-editor/pkg/serializer"
	"github.com/lk2023060901/xdooria-editor/pkg/websocket"
)

// RequestFrame 请求帧
type RequestFrame struct {
	Seq    uint64 `json:"seq"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

// ResponseFrame 回复帧
type ResponseFrame struct {
	Seq    uint64       `json:"seq"`
	Result any          `json:"result,omitempty"`
	Error  *RemoteError `json:"error,omitempty"`
}

// responseHeader 读取协程只解码帧头，result 留给调用方按目标类型解码
type responseHeader struct {
	Seq   uint64       `json:"seq"`
	Error *RemoteError `json:"error,omitempty"`
}

type inbound struct {
	data []byte
	err  error
}

// WSTransport 基于 WebSocket 的 Transport
// 回复按 seq 与等待中的调用配对，允许多条命令同时在途
type WSTransport struct {
	client *websocket.Client
	codec  serializer.Serializer
	logger logger.Logger

	mu      sync.Mutex
	pending map[uint64]chan inbound
	closed  bool
}

// NewWSTransport 创建 transport，需调用 Connect 后使用
func NewWSTransport(cfg *websocket.ClientConfig, codec serializer.Serializer, l logger.Logger) (*WSTransport, error) {
	if codec == nil {
		codec = serializer.NewJSON()
	}
	if l == nil {
		l = logger.NewNoop()
	}
	t := &WSTransport{
		codec:   codec,
		logger:  l.Named("gateway.ws"),
		pending: make(map[uint64]chan inbound),
	}
	client, err := websocket.NewClient(cfg,
		websocket.WithLogger(l),
		websocket.WithMessageHandler(t.handle),
		websocket.WithDisconnectHandler(t.disconnected),
	)
	if err != nil {
		return nil, err
	}
	t.client = client
	return t, nil
}

// Connect 建立连接
func (t *WSTransport) Connect(ctx context.Context) error {
	return t.client.Connect(ctx)
}

// Call 实现 Transport
func (t *WSTransport) Call(ctx context.Context, seq uint64, command string, params any, out any) error {
	data, err := t.codec.Serialize(&RequestFrame{Seq: seq, Method: command, Params: params})
	if err != nil {
		return errors.Wrapf(err, "gateway: encode %s", command)
	}

	ch := make(chan inbound, 1)
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.pending[seq] = ch
	t.mu.Unlock()
	defer t.forget(seq)

	msg := websocket.NewMessage(data)
	if t.codec.MessageBinary() {
		msg = websocket.NewBinaryMessage(data)
	}
	if err := t.client.Send(ctx, msg); err != nil {
		return errors.Wrapf(err, "gateway: send %s", command)
	}

	select {
	case in := <-ch:
		if in.err != nil {
			return in.err
		}
		if out == nil {
			return nil
		}
		// 目标指针放进 Result，两种编码都会解码到指针指向的值
		frame := ResponseFrame{Result: out}
		if err := t.codec.Deserialize(in.data, &frame); err != nil {
			return errors.Wrapf(err, "gateway: decode %s result", command)
		}
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "gateway: await %s", command)
	}
}

func (t *WSTransport) forget(seq uint64) {
	t.mu.Lock()
	delete(t.pending, seq)
	t.mu.Unlock()
}

func (t *WSTransport) handle(msg *websocket.Message) {
	var header responseHeader
	if err := t.codec.Deserialize(msg.Data, &header); err != nil {
		t.logger.Warn("undecodable frame dropped", "error", err, "size", len(msg.Data))
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[header.Seq]
	delete(t.pending, header.Seq)
	t.mu.Unlock()
	if !ok {
		t.logger.Warn("reply without waiter", "seq", header.Seq)
		return
	}

	in := inbound{data: msg.Data}
	if header.Error != nil {
		in.err = header.Error
	}
	ch <- in
}

func (t *WSTransport) disconnected(err error) {
	// 哨兵须在 Unwrap 链上；读错误作为次要原因保留
	t.failAll(errors.WithSecondaryError(errors.Wrap(ErrDisconnected, "gateway: connection lost"), err))
}

func (t *WSTransport) failAll(err error) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[uint64]chan inbound)
	t.mu.Unlock()

	for _, ch := range pending {
		ch <- inbound{err: err}
	}
}

// Close 关闭连接，所有等待中的调用返回 ErrClosed
func (t *WSTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.failAll(ErrClosed)
	return t.client.Close()
}
