// pkg/serializer/msgpack.go
package serializer

import (
	"bytes"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/valyala/bytebufferpool"
)

// msgpackHandle msgpack 编解码配置
// RawToString=true，MapType=map[string]interface{}，字段名优先取 codec tag，其次 json tag
var msgpackHandle = &codec.MsgpackHandle{}

var bufPool bytebufferpool.Pool

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]interface{}{})
	msgpackHandle.RawToString = true
	msgpackHandle.TypeInfos = codec.NewTypeInfos([]string{"codec", "json"})
}

// Encode 使用 msgpack 编码数据
func Encode(v interface{}) ([]byte, error) {
	buf := bufPool.Get()
	defer bufPool.Put(buf)

	if err := codec.NewEncoder(buf, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}

	// buf 会被回收复用，必须复制
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// Decode 使用 msgpack 解码数据
func Decode(data []byte, v interface{}) error {
	return codec.NewDecoder(bytes.NewReader(data), msgpackHandle).Decode(v)
}
