package model

// 货币类属性，不在属性页中编辑
const (
	StatEchoes  = "Echoes"
	StatInsight = "Insight"
)

// IsCurrencyStat 是否为货币类属性
func IsCurrencyStat(name string) bool {
	return name == StatEchoes || name == StatInsight
}

// AttributeStats 属性页展示的属性（不含货币）
func (s *Snapshot) AttributeStats() []Stat {
	out := make([]Stat, 0, len(s.Stats))
	for _, st := range s.Stats {
		if !IsCurrencyStat(st.Name) {
			out = append(out, st)
		}
	}
	return out
}

// CurrencyStats 货币类属性
func (s *Snapshot) CurrencyStats() []Stat {
	var out []Stat
	for _, st := range s.Stats {
		if IsCurrencyStat(st.Name) {
			out = append(out, st)
		}
	}
	return out
}

// ClampStat 属性值上限截断
func ClampStat(v uint32) uint32 {
	if v > MaxStatValue {
		return MaxStatValue
	}
	return v
}
