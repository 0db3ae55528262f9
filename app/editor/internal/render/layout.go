package render

import (
	"image"
	"image/color"
)

const fontFamily = "Reim"

// 资源路径前缀
const (
	BackgroundPrefix = "/assets/itemsBg/"
	ItemImagePrefix  = "/assets/itemImages/"
)

// Placeholder 缺失缩略图时使用的图片
const Placeholder = ItemImagePrefix + "empty.png"

// 背景模板
const (
	BackgroundItem    = BackgroundPrefix + "item.png"
	BackgroundSmall   = BackgroundPrefix + "item_small.png"
	BackgroundWeapon  = BackgroundPrefix + "weapon.png"
	BackgroundArmor   = BackgroundPrefix + "armor.png"
	BackgroundChalice = BackgroundPrefix + "chalice.png"
	BackgroundGem     = BackgroundPrefix + "gem.png"
)

// Backgrounds 全部背景模板
var Backgrounds = []string{
	BackgroundItem, BackgroundSmall, BackgroundWeapon, BackgroundArmor, BackgroundChalice, BackgroundGem,
}

func backgroundFor(k Kind) string {
	switch k {
	case KindWeapon:
		return BackgroundWeapon
	case KindArmor:
		return BackgroundArmor
	case KindChalice:
		return BackgroundChalice
	case KindGem:
		return BackgroundGem
	default:
		return BackgroundItem
	}
}

// 固定布局
var (
	// ThumbRect 缩略图区域：(9, 6) 起，宽高为偏移加 73，即 82x79
	ThumbRect = image.Rect(9, 6, 9+9+73, 6+6+73)

	// RuneThumbRect 符文图上移到 y=5，高度多 1 像素
	RuneThumbRect = image.Rect(9, 5, 9+9+73, 5+5+73+2)

	// natural 空区域表示按原尺寸绘制
	natural = image.Rectangle{}

	NamePos = image.Pt(107, 28)
	NotePos = image.Pt(104, 69)

	// 数值列：第一列 137，之后每列间隔 100，偏移 37
	statsY = 77

	// 宝石评级/形状与圣杯深度/区域共用的两列
	pairFirstPos  = image.Pt(135, 77)
	pairSecondPos = image.Pt(227, 77)
)

func statColumn(i int) image.Point {
	if i == 0 {
		return image.Pt(137, statsY)
	}
	return image.Pt(100*(i+1)+37, statsY)
}

// QuantityPos 数量的位置随位数变化以保持视觉对齐
func QuantityPos(amount uint32) image.Point {
	switch {
	case amount > 99:
		return image.Pt(45, 83)
	case amount > 9:
		return image.Pt(60, 85)
	default:
		return image.Pt(75, 83)
	}
}

var (
	textColor     = color.RGBA{R: 0xab, G: 0x9e, B: 0x87, A: 0xff}
	numberColor   = color.RGBA{R: 0xb8, G: 0xb7, B: 0xad, A: 0xff}
	quantityColor = color.RGBA{R: 0xdb, G: 0xd9, B: 0xd5, A: 0xff}

	textShadow = &Shadow{Blur: 3, OffsetY: 2, Color: color.RGBA{A: 0xff}}

	fontText     = Font{Family: fontFamily, Size: 18}
	fontGem      = Font{Family: fontFamily, Size: 20}
	fontQuantity = Font{Family: fontFamily, Size: 24}
)
