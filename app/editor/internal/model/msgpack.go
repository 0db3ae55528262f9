package model

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-msgpack/v2/codec"
)

// msgpack 编解码：与 JSON 接受同样的宽松形式（数字或字符串的 Value、[id, label] 或裸 id 的 Effect、
// 二元数组或 u32 的 MapID）

var (
	_ codec.Selfer = (*Value)(nil)
	_ codec.Selfer = (*Effect)(nil)
	_ codec.Selfer = (*MapID)(nil)
)

func (v *Value) CodecEncodeSelf(e *codec.Encoder) {
	e.MustEncode(string(*v))
}

func (v *Value) CodecDecodeSelf(d *codec.Decoder) {
	var raw any
	d.MustDecode(&raw)
	switch x := raw.(type) {
	case nil:
		*v = ""
	case string:
		*v = Value(x)
	case []byte:
		*v = Value(x)
	case int64:
		*v = Value(strconv.FormatInt(x, 10))
	case uint64:
		*v = Value(strconv.FormatUint(x, 10))
	case float64:
		*v = Value(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		*v = Value(strconv.FormatFloat(float64(x), 'f', -1, 32))
	default:
		panic(errors.Newf("model: value of type %T", raw))
	}
}

func (e *Effect) CodecEncodeSelf(enc *codec.Encoder) {
	enc.MustEncode([2]any{e.ID, e.Label})
}

func (e *Effect) CodecDecodeSelf(d *codec.Decoder) {
	var raw any
	d.MustDecode(&raw)
	pair, ok := raw.([]any)
	if !ok {
		e.ID, e.Label = mustUint32(raw, "effect id"), ""
		return
	}
	if len(pair) == 0 || len(pair) > 2 {
		panic(errors.Newf("model: effect pair has %d elements", len(pair)))
	}
	e.ID, e.Label = mustUint32(pair[0], "effect id"), ""
	if len(pair) == 2 {
		switch l := pair[1].(type) {
		case nil:
		case string:
			e.Label = l
		case []byte:
			e.Label = string(l)
		default:
			panic(errors.Newf("model: effect label of type %T", l))
		}
	}
}

func (m *MapID) CodecEncodeSelf(e *codec.Encoder) {
	e.MustEncode([2]int{int(m[0]), int(m[1])})
}

func (m *MapID) CodecDecodeSelf(d *codec.Decoder) {
	var raw any
	d.MustDecode(&raw)
	switch x := raw.(type) {
	case []any:
		if len(x) != 2 {
			panic(errors.Newf("model: map id has %d elements", len(x)))
		}
		m[0], m[1] = uint8(mustUint32(x[0], "map id")), uint8(mustUint32(x[1], "map id"))
	case []byte:
		if len(x) != 2 {
			panic(errors.Newf("model: map id has %d elements", len(x)))
		}
		m[0], m[1] = x[0], x[1]
	default:
		n := mustUint32(raw, "map id")
		m[0], m[1] = uint8(n), uint8(n>>8)
	}
}

func mustUint32(raw any, what string) uint32 {
	switch x := raw.(type) {
	case uint64:
		if x <= 0xFFFFFFFF {
			return uint32(x)
		}
	case int64:
		if x >= 0 && x <= 0xFFFFFFFF {
			return uint32(x)
		}
	}
	panic(errors.Newf("model: %s %v is not a u32", what, raw))
}
