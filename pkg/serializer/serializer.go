package serializer

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownCodec 未注册的编码名称
var ErrUnknownCodec = errors.New("serializer: unknown codec")

// Serializer 序列化器接口
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	// ContentType 内容类型（用于日志追踪）
	ContentType() string
	// MessageBinary 是否需要以二进制帧发送
	MessageBinary() bool
}

// ===============================
// JSON 序列化器
// ===============================

// JSON JSON 序列化器
type JSON struct{}

// NewJSON 创建 JSON 序列化器
func NewJSON() *JSON {
	return &JSON{}
}

func (s *JSON) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s *JSON) Deserialize(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (s *JSON) ContentType() string { return "application/json" }

func (s *JSON) MessageBinary() bool { return false }

// ===============================
// Msgpack 序列化器
// ===============================

// Msgpack msgpack 序列化器，结构体字段沿用 json tag
type Msgpack struct{}

// NewMsgpack 创建 msgpack 序列化器
func NewMsgpack() *Msgpack {
	return &Msgpack{}
}

func (s *Msgpack) Serialize(v any) ([]byte, error) {
	return Encode(v)
}

func (s *Msgpack) Deserialize(data []byte, v any) error {
	return Decode(data, v)
}

func (s *Msgpack) ContentType() string { return "application/msgpack" }

func (s *Msgpack) MessageBinary() bool { return true }

// ByName 根据配置名称选择序列化器：json / msgpack
func ByName(name string) (Serializer, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSON(), nil
	case "msgpack":
		return NewMsgpack(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownCodec, "%q", name)
	}
}
