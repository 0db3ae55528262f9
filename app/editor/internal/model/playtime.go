package model

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// Playtime 游戏时长的分解形式
type Playtime struct {
	Hours        uint32 `json:"hours"`
	Minutes      uint32 `json:"minutes"`
	Seconds      uint32 `json:"seconds"`
	Milliseconds uint32 `json:"milliseconds"`
}

// InterpretPlaytime 把毫秒数分解为时分秒
func InterpretPlaytime(ms uint32) Playtime {
	return Playtime{
		Hours:        ms / msPerHour,
		Minutes:      ms % msPerHour / msPerMinute,
		Seconds:      ms % msPerMinute / msPerSecond,
		Milliseconds: ms % msPerSecond,
	}
}

// ToMilliseconds 合并为毫秒数，溢出 u32 时报错
func (p Playtime) ToMilliseconds() (uint32, error) {
	if p.Minutes >= 60 || p.Seconds >= 60 || p.Milliseconds >= msPerSecond {
		return 0, errors.Newf("model: playtime %+v out of range", p)
	}
	total := uint64(p.Hours)*msPerHour +
		uint64(p.Minutes)*msPerMinute +
		uint64(p.Seconds)*msPerSecond +
		uint64(p.Milliseconds)
	if total > 0xFFFFFFFF {
		return 0, errors.Newf("model: playtime %d ms overflows", total)
	}
	return uint32(total), nil
}

// EncodePlaytime set_playtime 参数：小端 4 字节
func EncodePlaytime(ms uint32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], ms)
	return b
}

// RepresentPlaytime 存档中的十六进制表示（8 位，小端）
func RepresentPlaytime(ms uint32) string {
	b := EncodePlaytime(ms)
	return strings.ToUpper(hex.EncodeToString(b[:]))
}
