package model

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// MaxStatValue 属性值上限
const MaxStatValue uint32 = 999_999_999

// MaxUsernameLength 角色名最大长度
const MaxUsernameLength = 16

// Snapshot 后端返回的完整存档视图
// 由 store 持有并整体替换，界面层不得修改其中字段
type Snapshot struct {
	Stats     []Stat    `json:"stats"`
	Inventory Inventory `json:"inventory"`
	Storage   Inventory `json:"storage"`
	Username  Username  `json:"username"`
	Bosses    []Boss    `json:"bosses"`
	Playtime  uint32    `json:"playtime"`
	Position  *Position `json:"position,omitempty"`
}

// Inventory 背包或仓库
type Inventory struct {
	Articles     map[ArticleType][]Article `json:"articles"`
	Upgrades     map[UpgradeType][]Upgrade `json:"upgrades"`
	FirstArticle *ArticleType              `json:"first_article,omitempty"`
	FirstUpgrade *UpgradeType              `json:"first_upgrade,omitempty"`
}

// Stat 角色属性
type Stat struct {
	Name      string `json:"name"`
	RelOffset int    `json:"rel_offset"`
	Length    int    `json:"length"`
	Times     int    `json:"times"`
	Value     uint32 `json:"value"`
}

// Username 角色名
type Username struct {
	String string `json:"string"`
}

// Position 角色位置
type Position struct {
	Coordinates Coordinates `json:"coordinates"`
	LoadedMap   MapID       `json:"loaded_map"`
}

// Coordinates 坐标，后端以字符串形式给出浮点数
type Coordinates struct {
	Offset int   `json:"offset,omitempty"`
	X      Value `json:"x"`
	Y      Value `json:"y"`
	Z      Value `json:"z"`
}

// MapID 地图标识：区域号与子区域号
// 后端可能给出 u32（小端）或二元数组
type MapID [2]uint8

func (m MapID) MarshalJSON() ([]byte, error) {
	// []uint8 会被编码成 base64 字符串
	return json.Marshal([2]int{int(m[0]), int(m[1])})
}

func (m *MapID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []uint8
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return errors.Newf("model: map id has %d elements", len(pair))
		}
		m[0], m[1] = pair[0], pair[1]
		return nil
	}
	var n uint32
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	m[0], m[1] = uint8(n), uint8(n>>8)
	return nil
}

// Boss 首领及其死亡标记
type Boss struct {
	Name  string     `json:"name"`
	Flags []BossFlag `json:"flags"`
}

// BossFlag 单个标记字节
type BossFlag struct {
	RelOffset    int   `json:"rel_offset"`
	DeadValue    uint8 `json:"dead_value"`
	AliveValue   uint8 `json:"alive_value"`
	CurrentValue uint8 `json:"current_value"`
}

// Dead 所有标记都处于死亡值时视为已击杀
func (b *Boss) Dead() bool {
	if len(b.Flags) == 0 {
		return false
	}
	for _, f := range b.Flags {
		if f.CurrentValue != f.DeadValue {
			return false
		}
	}
	return true
}

// ===== 查找 =====

// Container 按位置返回背包或仓库
func (s *Snapshot) Container(loc Location) *Inventory {
	if loc == LocationStorage {
		return &s.Storage
	}
	return &s.Inventory
}

// Article 按位置、分类与下标查找物品
func (s *Snapshot) Article(loc Location, t ArticleType, index int) (*Article, bool) {
	list := s.Container(loc).Articles[t]
	if index < 0 || index >= len(list) {
		return nil, false
	}
	return &list[index], true
}

// Upgrade 按位置、类型与下标查找强化物
func (s *Snapshot) Upgrade(loc Location, t UpgradeType, index int) (*Upgrade, bool) {
	list := s.Container(loc).Upgrades[t]
	if index < 0 || index >= len(list) {
		return nil, false
	}
	return &list[index], true
}

// StatByName 按名称查找属性
func (s *Snapshot) StatByName(name string) (*Stat, bool) {
	for i := range s.Stats {
		if s.Stats[i].Name == name {
			return &s.Stats[i], true
		}
	}
	return nil, false
}

// ===== 生命周期 =====

// Normalize 把 Index 修正为元素在所属列表中的位置
func (s *Snapshot) Normalize() {
	for _, inv := range []*Inventory{&s.Inventory, &s.Storage} {
		for t := range inv.Articles {
			list := inv.Articles[t]
			for i := range list {
				list[i].Index = i
				if list[i].TypeFamily == "" {
					list[i].TypeFamily = list[i].ArticleType.Family()
				}
			}
		}
		for t := range inv.Upgrades {
			list := inv.Upgrades[t]
			for i := range list {
				list[i].Index = i
			}
		}
	}
}

// Clone 深拷贝
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		panic(errors.Wrap(err, "model: clone snapshot"))
	}
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		panic(errors.Wrap(err, "model: clone snapshot"))
	}
	return &out
}

// DecodeSnapshot 解析后端返回的 JSON 并修正下标
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "model: decode snapshot")
	}
	s.Normalize()
	return &s, nil
}
