package model

import "strings"

// Category 背包筛选分类，声明顺序即全部视图下的展示顺序
type Category int

const (
	CategoryConsumable Category = iota
	CategoryMaterial
	CategoryKey
	CategoryRightHand
	CategoryLeftHand
	CategoryArmor
	CategoryGem
	CategoryRune
	CategoryChalice
)

// Categories 全部分类，按声明顺序
var Categories = []Category{
	CategoryConsumable,
	CategoryMaterial,
	CategoryKey,
	CategoryRightHand,
	CategoryLeftHand,
	CategoryArmor,
	CategoryGem,
	CategoryRune,
	CategoryChalice,
}

var categoryNames = [...]string{
	"Consumable", "Material", "Key", "RightHand", "LeftHand", "Armor", "Gem", "Rune", "Chalice",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// ParseCategory 按名称解析分类（不区分大小写）
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(i), true
		}
	}
	return 0, false
}

// ArticleType 分类对应的物品类型，Gem/Rune 返回 false
func (c Category) ArticleType() (ArticleType, bool) {
	switch c {
	case CategoryGem, CategoryRune:
		return "", false
	}
	return ArticleType(c.String()), true
}

// UpgradeType 分类对应的强化物类型
func (c Category) UpgradeType() (UpgradeType, bool) {
	switch c {
	case CategoryGem:
		return UpgradeGem, true
	case CategoryRune:
		return UpgradeRune, true
	}
	return "", false
}

// CategoryOf 物品类型所属分类
func CategoryOf(t ArticleType) Category {
	c, _ := ParseCategory(string(t))
	return c
}
