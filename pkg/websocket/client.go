// pkg/websocket/client.go
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

// MessageHandler 收到消息时的回调，在读取协程中执行
type MessageHandler func(msg *Message)

// DisconnectHandler 连接断开时的回调
type DisconnectHandler func(err error)

// Client WebSocket 客户端
// 单连接；写操作经发送队列串行化，读取在独立协程中完成
type Client struct {
	config *ClientConfig
	logger logger.Logger
	dialer *websocket.Dialer
	id     string

	onMessage    MessageHandler
	onDisconnect DisconnectHandler

	mu      sync.RWMutex
	state   ConnectionState
	conn    *websocket.Conn
	sendCh  chan *Message
	closeCh chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithLogger 设置日志
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMessageHandler 设置消息回调
func WithMessageHandler(h MessageHandler) ClientOption {
	return func(c *Client) {
		c.onMessage = h
	}
}

// WithDisconnectHandler 设置断开回调
func WithDisconnectHandler(h DisconnectHandler) ClientOption {
	return func(c *Client) {
		c.onDisconnect = h
	}
}

// NewClient 创建客户端
func NewClient(cfg *ClientConfig, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}
	merged := cfg.withDefaults()
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:  merged,
		logger:  logger.NewNoop(),
		id:      uuid.NewString(),
		state:   StateDisconnected,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("websocket").WithFields("conn_id", c.id)
	c.dialer = &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: merged.DialTimeout,
	}
	return c, nil
}

// ID 连接标识
func (c *Client) ID() string {
	return c.id
}

// Connect 建立连接并启动读写协程
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrConnectionClosed
	case StateConnected, StateConnecting:
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.mu.Unlock()

	header := make(http.Header)
	for k, v := range c.config.Headers {
		header.Set(k, v)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.config.URL, header)
	if err != nil {
		c.setState(StateDisconnected)
		return errors.Wrapf(err, "websocket: dial %s", c.config.URL)
	}
	conn.SetReadLimit(c.config.ReadLimit)

	sendCh := make(chan *Message, c.config.SendQueueSize)

	c.mu.Lock()
	c.conn = conn
	c.sendCh = sendCh
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info("connected", "url", c.config.URL)

	c.wg.Add(2)
	go c.writeLoop(conn, sendCh)
	go c.readLoop(conn)
	return nil
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State 获取连接状态
func (c *Client) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Send 将消息放入发送队列，ctx 只约束排队等待
func (c *Client) Send(ctx context.Context, msg *Message) error {
	c.mu.RLock()
	state, sendCh := c.state, c.sendCh
	c.mu.RUnlock()

	if state != StateConnected {
		return ErrNotConnected
	}
	select {
	case sendCh <- msg:
		return nil
	case <-c.closeCh:
		return ErrConnectionClosed
	case <-ctx.Done():
		return errors.Mark(ctx.Err(), ErrSendQueueFull)
	}
}

func (c *Client) writeLoop(conn *websocket.Conn, sendCh chan *Message) {
	defer c.wg.Done()

	var ping <-chan time.Time
	if c.config.Heartbeat.Enable {
		ticker := time.NewTicker(c.config.Heartbeat.Interval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case msg := <-sendCh:
			_ = conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(int(msg.Type), msg.Data); err != nil {
				c.logger.Warn("write failed", "error", err)
				_ = conn.Close()
				return
			}
		case <-ping:
			deadline := time.Now().Add(c.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Warn("ping failed", "error", err)
				_ = conn.Close()
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	if c.config.Heartbeat.Enable {
		_ = conn.SetReadDeadline(time.Now().Add(c.config.Heartbeat.Timeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(c.config.Heartbeat.Timeout))
		})
	}

	var readErr error
	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		if c.onMessage != nil {
			c.onMessage(&Message{Type: MessageType(typ), Data: data, Timestamp: time.Now()})
		}
	}

	select {
	case <-c.closeCh:
		return
	default:
	}

	if ne, ok := readErr.(interface{ Timeout() bool }); ok && ne.Timeout() {
		readErr = errors.Mark(readErr, ErrHeartbeatTimeout)
	}
	c.logger.Warn("disconnected", "error", readErr)

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = StateDisconnected
	}
	c.mu.Unlock()
	_ = conn.Close()

	if c.onDisconnect != nil {
		c.onDisconnect(readErr)
	}
}

// Close 关闭客户端，之后不可再 Connect
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.state = StateClosed
		c.mu.Unlock()

		close(c.closeCh)
		if conn != nil {
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			c.closeErr = conn.Close()
		}
		c.wg.Wait()
		c.logger.Info("closed")
	})
	return c.closeErr
}
