// Package render 把一条记录转换为确定的绘制指令序列，并负责把指令绘制到位图上。
//
// Render 是纯函数，只依赖记录与图片集合的键；Painter 是唯一执行像素写入的步骤。
package render

import (
	"image"
	"image/color"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// Kind 绘制模板
type Kind int

const (
	KindItem Kind = iota
	KindKey
	KindWeapon
	KindArmor
	KindChalice
	KindGem
	KindRune
)

var kindNames = [...]string{"item", "key", "weapon", "armor", "chalice", "gem", "rune"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf 记录对应的绘制模板
func KindOf(r model.Record) Kind {
	switch v := r.(type) {
	case *model.Upgrade:
		if v.UpgradeType == model.UpgradeRune {
			return KindRune
		}
		return KindGem
	case *model.Article:
		switch v.ArticleType {
		case model.ArticleRightHand, model.ArticleLeftHand:
			return KindWeapon
		case model.ArticleArmor:
			return KindArmor
		case model.ArticleChalice:
			return KindChalice
		case model.ArticleKey:
			return KindKey
		}
	}
	return KindItem
}

// OpKind 指令类型
type OpKind int

const (
	OpImage OpKind = iota
	OpText
)

// Font 字体
type Font struct {
	Family string
	Size   int
}

// Shadow 文字阴影
type Shadow struct {
	Blur    int
	OffsetX int
	OffsetY int
	Color   color.RGBA
}

// DrawOp 一条绘制指令
type DrawOp struct {
	Kind OpKind

	// OpImage：图片键与目标区域，Rect 为空时按原尺寸绘制在原点
	Image string
	Rect  image.Rectangle

	// OpText
	Text   string
	At     image.Point
	Font   Font
	Color  color.RGBA
	Shadow *Shadow
}

// ImageOp 图片指令
func ImageOp(key string, rect image.Rectangle) DrawOp {
	return DrawOp{Kind: OpImage, Image: key, Rect: rect}
}

// TextOp 文字指令
func TextOp(text string, at image.Point, font Font, c color.RGBA, shadow *Shadow) DrawOp {
	return DrawOp{Kind: OpText, Text: text, At: at, Font: font, Color: c, Shadow: shadow}
}
