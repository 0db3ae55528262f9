// Package identity 从效果 id、来源与形状推导血宝石/符文的展示身份。
// 全部为纯函数，不做任何 I/O。
package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// Color 血宝石颜色
type Color string

const (
	ColorNone   Color = ""
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorYellow Color = "yellow"
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
	ColorWhite  Color = "white"
	ColorRed    Color = "red"
)

// 按顺序匹配，先命中者生效
var colorRules = []struct {
	color   Color
	pattern *regexp.Regexp
}{
	{ColorBlue, regexp.MustCompile(`vs beasts|blood`)},
	{ColorPurple, regexp.MustCompile(`(?:slow|rapid) poison effect`)},
	{ColorYellow, regexp.MustCompile(`bolt`)},
	{ColorOrange, regexp.MustCompile(`fire|vs the kin`)},
	{ColorGreen, regexp.MustCompile(`charge atks up|stamina cost|phys. up|boosts rally|hp continues|wpn durability`)},
	{ColorWhite, regexp.MustCompile(`arcane`)},
	{ColorRed, regexp.MustCompile(`physical|skl|str|thrust|blunt|atk`)},
}

// ResolveGemColor 按主效果描述判定颜色，无匹配时返回 ColorNone
func ResolveGemColor(label string) Color {
	lower := strings.ToLower(label)
	for _, r := range colorRules {
		if r.pattern.MatchString(lower) {
			return r.color
		}
	}
	return ColorNone
}

var cursePatterns = []string{"-", "Increases stamina", "DOWN"}

// ClassifyCurse 任一效果描述带有负面标记即为诅咒宝石
func ClassifyCurse(effects []model.Effect) bool {
	for _, e := range effects {
		for _, p := range cursePatterns {
			if strings.Contains(e.Label, p) {
				return true
			}
		}
	}
	return false
}

// ActiveEffects 过滤掉空效果哨兵
func ActiveEffects(effects []model.Effect) []model.Effect {
	out := make([]model.Effect, 0, len(effects))
	for _, e := range effects {
		if !e.Empty() {
			out = append(out, e)
		}
	}
	return out
}

// Unique 特殊宝石的固定身份
type Unique struct {
	Name  string
	Image string
}

type uniqueKey struct {
	shape  model.Shape
	effect uint32
	source uint32
}

var uniqueGems = map[uniqueKey]Unique{
	{model.ShapeDroplet, 3143408, 2147633649}: {Name: "Tear Blood Gem", Image: "tear"},
	{model.ShapeDroplet, 3126204, 2147633648}: {Name: "Red Blood Gem", Image: "brooch"},
	{model.ShapeRadial, 3133407, 2147633650}:  {Name: "Gold Blood Gem", Image: "gold"},
}

// ResolveUniqueGem 查找特殊宝石，未命中返回 nil
func ResolveUniqueGem(primaryEffectID uint32, shape model.Shape, source uint32) *Unique {
	u, ok := uniqueGems[uniqueKey{shape, primaryEffectID, source}]
	if !ok {
		return nil
	}
	return &u
}

// GlitchedName 异常来源宝石的占位名
const GlitchedName = "?GemName?"

// IsGlitchedSource 来源是否属于异常宝石
func IsGlitchedSource(source uint32) bool {
	switch source {
	case 2147633648, 2147633649, 2147633650:
		return true
	}
	return false
}

// UniqueOf 按宝石的主效果查找特殊身份
func UniqueOf(gem *model.Upgrade) *Unique {
	primary, ok := gem.PrimaryEffect()
	if !ok {
		return nil
	}
	return ResolveUniqueGem(primary.ID, gem.Shape, gem.Source)
}

// GemDisplayName 特殊宝石用固定名，异常来源用占位名，其余用原名
func GemDisplayName(gem *model.Upgrade) string {
	if u := UniqueOf(gem); u != nil {
		return u.Name
	}
	if IsGlitchedSource(gem.Source) {
		return GlitchedName
	}
	return gem.Info.Name
}

// ResolveGemImagePath 血宝石缩略图路径，特殊宝石优先
func ResolveGemImagePath(effects []model.Effect, shape model.Shape, level int, unique *Unique) string {
	if unique != nil {
		return fmt.Sprintf("/assets/gems/unique/%s.png", unique.Image)
	}
	var label string
	if len(effects) > 0 {
		label = effects[0].Label
	}
	color := ResolveGemColor(label)
	// 无颜色时资源目录名为 null
	if color == ColorNone {
		color = "null"
	}
	cursed := ""
	if ClassifyCurse(effects) {
		cursed = "cursed_"
	}
	return fmt.Sprintf("/assets/gems/%s/%s/%s%d.png",
		strings.ToLower(string(shape)), color, cursed, level)
}

var runePrefix = regexp.MustCompile(`great_|arcane_|dissipating_|stunning_|clear_|fading_`)

// NormalizeRuneName 小写并以下划线替换空格
func NormalizeRuneName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// ResolveRuneImagePath 誓约符文按名称索引，其余去掉前缀后按评级索引
func ResolveRuneImagePath(name string, shape model.Shape, rating int) string {
	normalized := NormalizeRuneName(name)
	if shape == model.ShapeOath {
		return fmt.Sprintf("/assets/runes/oath/%s.png", normalized)
	}
	stripped := strings.TrimSpace(runePrefix.ReplaceAllString(normalized, ""))
	return fmt.Sprintf("/assets/runes/%s/%d.png", stripped, rating)
}

// ImagePath 强化物缩略图路径
func ImagePath(u *model.Upgrade) string {
	if u.UpgradeType == model.UpgradeRune {
		return ResolveRuneImagePath(u.Info.Name, u.Shape, u.Info.Rating)
	}
	return ResolveGemImagePath(u.Effects, u.Shape, u.Info.Level, UniqueOf(u))
}

const cursedPrefix = "Cursed "

// AdjustCursedName 编辑效果后按诅咒状态增删名称前缀
func AdjustCursedName(name string, effects []model.Effect) string {
	base := strings.TrimPrefix(name, cursedPrefix)
	if ClassifyCurse(effects) {
		return cursedPrefix + base
	}
	return base
}
