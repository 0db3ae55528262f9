package model

// FlagPreset 一组连续字节的预设写入
type FlagPreset struct {
	Name   string
	Offset int
	Values []uint8
}

// FlagPresets 可用的标记预设
var FlagPresets = []FlagPreset{
	{Name: "Restore Maria's dialogue", Offset: 1083, Values: []uint8{0, 8}},
	{Name: "Enable Doll's lullaby", Offset: 6689, Values: []uint8{1, 8}},
}

// FindFlagPreset 按名称查找预设
func FindFlagPreset(name string) (FlagPreset, bool) {
	for _, p := range FlagPresets {
		if p.Name == name {
			return p, true
		}
	}
	return FlagPreset{}, false
}

// LegacyBossFlag 旧版单字节掩码编码
// 与逐标记列表语义相同，但未经存档格式验证，不与之互换使用
type LegacyBossFlag struct {
	Name      string `json:"name"`
	Offset    int    `json:"offset"`
	DeadValue uint8  `json:"dead_value"`
	Value     uint8  `json:"value"`
}

// Dead 掩码位被置上即为已击杀
func (f LegacyBossFlag) Dead() bool {
	return f.DeadValue&f.Value&0xff != 0
}

// Toggle 返回切换后的字节值
func (f LegacyBossFlag) Toggle(dead bool) uint8 {
	if dead {
		return f.Value | f.DeadValue
	}
	return f.Value & (^f.DeadValue & 0xff)
}
