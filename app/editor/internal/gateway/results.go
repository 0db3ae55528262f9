package gateway

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// ===== return_* 目录结果 =====
// 键为字符串形式的 id；武器与物品外层键为小驼峰的分类名

// CatalogItem 目录中的一件物品
type CatalogItem struct {
	ItemName string        `json:"item_name"`
	ItemImg  string        `json:"item_img"`
	ItemDesc string        `json:"item_desc"`
	Damage   *model.Damage `json:"damage,omitempty"`

	Depth model.Value `json:"depth,omitempty"`
	Area  model.Value `json:"area,omitempty"`
}

// CatalogArmor 目录中的一件防具
type CatalogArmor struct {
	ItemName         string                  `json:"item_name"`
	ItemImg          string                  `json:"item_img"`
	ItemDesc         string                  `json:"item_desc"`
	PhysicalDefense  *model.PhysicalDefense  `json:"physicalDefense,omitempty"`
	ElementalDefense *model.ElementalDefense `json:"elementalDefense,omitempty"`
	Resistance       map[string]model.Value  `json:"resistance,omitempty"`
	Beasthood        model.Value             `json:"beasthood,omitempty"`
	Type             string                  `json:"type,omitempty"`
}

// CatalogEffect 强化效果
type CatalogEffect struct {
	Effect string `json:"effect"`
	Rating int    `json:"rating"`
	Level  int    `json:"level"`
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
}

// WeaponTable return_weapons 结果
type WeaponTable map[string]map[string]CatalogItem

// ItemTable return_items 结果
type ItemTable map[string]map[string]CatalogItem

// ArmorTable return_armors 结果
type ArmorTable map[string]CatalogArmor

// EffectTable return_gem_effects / return_rune_effects 结果
type EffectTable map[string]CatalogEffect

// Isz get_isz 结果
type Isz []int

// String 以大写十六进制显示，空格分隔
func (z Isz) String() string {
	parts := make([]string, len(z))
	for i, b := range z {
		parts[i] = fmt.Sprintf("%X", b)
	}
	return strings.Join(parts, " ")
}
