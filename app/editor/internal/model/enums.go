package model

// ArticleType 物品分类（后端枚举的变体名）
type ArticleType string

const (
	ArticleConsumable ArticleType = "Consumable"
	ArticleMaterial   ArticleType = "Material"
	ArticleKey        ArticleType = "Key"
	ArticleChalice    ArticleType = "Chalice"
	ArticleRightHand  ArticleType = "RightHand"
	ArticleLeftHand   ArticleType = "LeftHand"
	ArticleArmor      ArticleType = "Armor"
)

// TypeFamily 变换（transform_item）只允许在同一族内进行
type TypeFamily string

const (
	FamilyItem   TypeFamily = "Item"
	FamilyWeapon TypeFamily = "Weapon"
	FamilyArmor  TypeFamily = "Armor"
)

// Family 返回物品分类所属的族
func (t ArticleType) Family() TypeFamily {
	switch t {
	case ArticleRightHand, ArticleLeftHand:
		return FamilyWeapon
	case ArticleArmor:
		return FamilyArmor
	default:
		return FamilyItem
	}
}

// Stackable 是否可以编辑数量
func (t ArticleType) Stackable() bool {
	return t == ArticleConsumable || t == ArticleMaterial
}

// UpgradeType 强化物类型
type UpgradeType string

const (
	UpgradeGem  UpgradeType = "Gem"
	UpgradeRune UpgradeType = "Rune"
)

// Shape 槽位/强化物形状
type Shape string

const (
	ShapeClosed   Shape = "Closed"
	ShapeRadial   Shape = "Radial"
	ShapeTriangle Shape = "Triangle"
	ShapeWaning   Shape = "Waning"
	ShapeCircle   Shape = "Circle"
	ShapeDroplet  Shape = "Droplet"
	ShapeOath     Shape = "Oath"
	ShapeRuneBase Shape = "-"
)

// GemShapes 血宝石可选形状
var GemShapes = []Shape{ShapeRadial, ShapeTriangle, ShapeWaning, ShapeCircle, ShapeDroplet}

// RuneShapes 符文可选形状
var RuneShapes = []Shape{ShapeRuneBase, ShapeOath}

// SlotShapes 武器槽位可选形状
var SlotShapes = []Shape{ShapeClosed, ShapeRadial, ShapeTriangle, ShapeWaning, ShapeCircle}

// ShapesFor 返回指定强化物类型可选的形状
func ShapesFor(t UpgradeType) []Shape {
	if t == UpgradeRune {
		return RuneShapes
	}
	return GemShapes
}

// ValidShape 形状是否属于给定列表
func ValidShape(shape Shape, options []Shape) bool {
	for _, s := range options {
		if s == shape {
			return true
		}
	}
	return false
}

// Imprint 武器刻印
type Imprint string

const (
	ImprintNone    Imprint = ""
	ImprintUncanny Imprint = "Uncanny"
	ImprintLost    Imprint = "Lost"
)

// Location 物品所在位置
type Location int

const (
	LocationInventory Location = iota
	LocationStorage
)

func (l Location) String() string {
	if l == LocationStorage {
		return "storage"
	}
	return "inventory"
}

// IsStorage 后端参数 isStorage
func (l Location) IsStorage() bool {
	return l == LocationStorage
}
