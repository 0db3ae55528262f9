package backendtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/pkg/serializer"
)

// Server 通过 WebSocket 暴露 Authority，帧格式与 gateway.WSTransport 一致
type Server struct {
	authority *Authority
	codec     serializer.Serializer
	srv       *httptest.Server
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

type requestHeader struct {
	Seq    uint64 `json:"seq"`
	Method string `json:"method"`
}

// NewServer 启动测试服务器，codec 为 nil 时使用 JSON
func NewServer(a *Authority, codec serializer.Serializer) *Server {
	if codec == nil {
		codec = serializer.NewJSON()
	}
	s := &Server{
		authority: a,
		codec:     codec,
		conns:     make(map[*websocket.Conn]struct{}),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// URL ws:// 地址
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// Drop 断开所有连接，服务器继续监听
func (s *Server) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}

// Close 关闭服务器
func (s *Server) Close() {
	s.Drop()
	s.srv.Close()
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply, err := s.codec.Serialize(s.dispatch(data))
		if err != nil {
			return
		}
		if err := conn.WriteMessage(typ, reply); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(data []byte) *gateway.ResponseFrame {
	var header requestHeader
	if err := s.codec.Deserialize(data, &header); err != nil {
		return &gateway.ResponseFrame{Error: &gateway.RemoteError{Code: CodeInvalid, Message: err.Error()}}
	}
	frame := &gateway.ResponseFrame{Seq: header.Seq}

	req, ok := gateway.NewRequest(header.Method)
	if !ok {
		frame.Error = &gateway.RemoteError{Code: CodeInvalid, Message: "unknown command " + header.Method}
		return frame
	}
	params := struct {
		Params any `json:"params"`
	}{Params: req}
	if err := s.codec.Deserialize(data, &params); err != nil {
		frame.Error = &gateway.RemoteError{Code: CodeInvalid, Message: err.Error()}
		return frame
	}

	result, err := s.authority.Handle(header.Seq, req)
	if err != nil {
		re, ok := gateway.IsRemote(err)
		if !ok {
			re = &gateway.RemoteError{Code: CodeInvalid, Message: err.Error()}
		}
		frame.Error = re
		return frame
	}
	frame.Result = result
	return frame
}
