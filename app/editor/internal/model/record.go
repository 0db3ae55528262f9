package model

import "strconv"

// Record 可展示的背包条目：*Article 或 *Upgrade
// 接口由本包封闭，调用方通过类型选择区分变体
type Record interface {
	// Category 条目所属分类
	Category() Category
	// Key 在同一快照内唯一的标识
	Key() string
	// Name 展示名
	Name() string

	sealed()
}

var (
	_ Record = (*Article)(nil)
	_ Record = (*Upgrade)(nil)
)

func (a *Article) Category() Category { return CategoryOf(a.ArticleType) }

func (a *Article) Key() string {
	return string(a.ArticleType) + "/" + strconv.Itoa(a.Index)
}

func (a *Article) Name() string { return a.Info.ItemName }

func (*Article) sealed() {}

func (u *Upgrade) Category() Category {
	if u.UpgradeType == UpgradeRune {
		return CategoryRune
	}
	return CategoryGem
}

func (u *Upgrade) Key() string {
	return string(u.UpgradeType) + "/" + strconv.Itoa(u.Index)
}

func (u *Upgrade) Name() string { return u.Info.Name }

func (*Upgrade) sealed() {}
