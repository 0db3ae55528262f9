package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value 后端以数字或字符串给出的展示值，例如伤害 "120"、不适用时 "-"
type Value string

// UnmarshalJSON 接受字符串、数字与 null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Value(n.String())
	return nil
}

func (v Value) String() string {
	return string(v)
}

// Int 数值形式，无法解析（如 "-"）时返回 false
func (v Value) Int() (int, bool) {
	n, err := strconv.Atoi(string(v))
	return n, err == nil
}

// Float 浮点形式
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(v), 64)
	return f, err == nil
}
