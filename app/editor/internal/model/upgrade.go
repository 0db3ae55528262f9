package model

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// NoEffect 空效果槽的哨兵值
const NoEffect uint32 = 0xFFFFFFFF

// GemEffectSlots 血宝石效果槽数量
const GemEffectSlots = 6

// Effect 一条效果：(效果 id, 描述)
// 线上格式为二元数组 [id, "label"]，也兼容只有 id 的数字
type Effect struct {
	ID    uint32
	Label string
}

// Empty 是否为空效果
func (e Effect) Empty() bool {
	return e.ID == NoEffect
}

func (e Effect) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Label})
}

func (e *Effect) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '[' {
		return json.Unmarshal(data, &e.ID)
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) == 0 || len(pair) > 2 {
		return errors.Newf("model: effect pair has %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return errors.Wrap(err, "model: effect id")
	}
	e.Label = ""
	if len(pair) == 2 && !bytes.Equal(bytes.TrimSpace(pair[1]), []byte("null")) {
		if err := json.Unmarshal(pair[1], &e.Label); err != nil {
			return errors.Wrap(err, "model: effect label")
		}
	}
	return nil
}

// Upgrade 血宝石或符文
type Upgrade struct {
	ID          uint32      `json:"id"`
	Source      uint32      `json:"source"`
	UpgradeType UpgradeType `json:"upgrade_type"`
	Shape       Shape       `json:"shape"`
	Effects     []Effect    `json:"effects"`
	Info        UpgradeInfo `json:"info"`
	Index       int         `json:"index"`
}

// UpgradeInfo 由主效果决定的展示信息
type UpgradeInfo struct {
	Name   string `json:"name"`
	Effect string `json:"effect"`
	Rating int    `json:"rating"`
	Level  int    `json:"level"`
	Note   string `json:"note"`
}

// PrimaryEffect 第一个效果（决定名称与颜色）
func (u *Upgrade) PrimaryEffect() (Effect, bool) {
	if len(u.Effects) == 0 {
		return Effect{ID: NoEffect}, false
	}
	return u.Effects[0], true
}
