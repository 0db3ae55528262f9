package model

// Article 背包或仓库中的一件物品
type Article struct {
	Number      uint8       `json:"number"`
	ID          uint32      `json:"id"`
	FirstPart   uint32      `json:"first_part"`
	SecondPart  uint32      `json:"second_part"`
	Amount      uint32      `json:"amount"`
	Info        ItemInfo    `json:"info"`
	ArticleType ArticleType `json:"article_type"`
	TypeFamily  TypeFamily  `json:"type_family,omitempty"`
	Slots       []Slot      `json:"slots,omitempty"`
	// Index 在所属分类列表中的位置
	Index int `json:"index"`
}

// ItemInfo 物品展示信息
type ItemInfo struct {
	ItemName  string     `json:"item_name"`
	ItemDesc  string     `json:"item_desc"`
	ItemImg   string     `json:"item_img"`
	ExtraInfo *ExtraInfo `json:"extra_info,omitempty"`
}

// ExtraInfo 按物品类型使用不同字段：
// 武器 damage/upgrade_level/imprint，防具 physicalDefense/elementalDefense/resistance/beasthood，
// 圣杯 depth/area
type ExtraInfo struct {
	Damage       *Damage `json:"damage,omitempty"`
	UpgradeLevel int     `json:"upgrade_level,omitempty"`
	Imprint      Imprint `json:"imprint,omitempty"`

	PhysicalDefense  *PhysicalDefense  `json:"physicalDefense,omitempty"`
	ElementalDefense *ElementalDefense `json:"elementalDefense,omitempty"`
	Resistance       map[string]Value  `json:"resistance,omitempty"`
	Beasthood        Value             `json:"beasthood,omitempty"`

	Depth Value `json:"depth,omitempty"`
	Area  Value `json:"area,omitempty"`
}

// Damage 武器伤害
type Damage struct {
	Physical Value `json:"physical"`
	Blood    Value `json:"blood"`
	Arcane   Value `json:"arcane"`
	Fire     Value `json:"fire"`
	Bolt     Value `json:"bolt"`
}

// PhysicalDefense 防具物理防御
type PhysicalDefense struct {
	Physical Value `json:"physical"`
	Blunt    Value `json:"blunt"`
	Thrust   Value `json:"thrust"`
	Blood    Value `json:"blood"`
}

// ElementalDefense 防具元素防御
type ElementalDefense struct {
	Arcane Value `json:"arcane"`
	Fire   Value `json:"fire"`
	Bolt   Value `json:"bolt"`
}

// Slot 武器上的血宝石槽位
// Closed 槽位不允许镶嵌
type Slot struct {
	Shape Shape    `json:"shape"`
	Gem   *Upgrade `json:"gem"`
}

// Occupied 槽位上是否已有宝石
func (s Slot) Occupied() bool {
	return s.Gem != nil
}

// Weapon 武器附加信息
func (a *Article) Weapon() (upgradeLevel int, imprint Imprint) {
	if a.Info.ExtraInfo == nil {
		return 0, ImprintNone
	}
	return a.Info.ExtraInfo.UpgradeLevel, a.Info.ExtraInfo.Imprint
}
