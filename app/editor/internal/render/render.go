package render

import (
	"strconv"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/identity"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// Images 图片集合的只读视图
type Images interface {
	Has(key string) bool
}

// Render 生成一条记录的完整绘制指令
func Render(r model.Record, images Images) []DrawOp {
	kind := KindOf(r)
	thumb := ThumbRect
	if kind == KindRune {
		thumb = RuneThumbRect
	}
	ops := []DrawOp{
		ImageOp(backgroundFor(kind), natural),
		ImageOp(resolve(thumbnailKey(r), images), thumb),
	}

	switch v := r.(type) {
	case *model.Upgrade:
		return append(ops, upgradeText(v, kind)...)
	case *model.Article:
		return append(ops, articleText(v, kind)...)
	}
	return ops
}

// RenderSmall 替换列表中使用的紧凑样式，不绘制数量
func RenderSmall(r model.Record, images Images) []DrawOp {
	name, note := r.Name(), ""
	if a, ok := r.(*model.Article); ok {
		note = a.Info.ItemDesc
	}
	return []DrawOp{
		ImageOp(BackgroundSmall, natural),
		ImageOp(resolve(thumbnailKey(r), images), ThumbRect),
		TextOp(name, NamePos, fontText, textColor, textShadow),
		TextOp(note, NotePos, fontText, textColor, textShadow),
	}
}

// thumbnailKey 记录缩略图的资源键
func thumbnailKey(r model.Record) string {
	switch v := r.(type) {
	case *model.Upgrade:
		return identity.ImagePath(v)
	case *model.Article:
		if v.Info.ItemImg == "" {
			return Placeholder
		}
		return ItemImagePrefix + v.Info.ItemImg
	}
	return Placeholder
}

func resolve(key string, images Images) string {
	if images == nil || images.Has(key) {
		return key
	}
	return Placeholder
}

func upgradeText(u *model.Upgrade, kind Kind) []DrawOp {
	if kind == KindRune {
		return []DrawOp{
			TextOp(u.Info.Name, NamePos, fontText, textColor, textShadow),
			TextOp(u.Info.Note, NotePos, fontText, textColor, textShadow),
		}
	}
	ops := []DrawOp{
		TextOp(identity.GemDisplayName(u), NamePos, fontGem, textColor, textShadow),
		TextOp(strconv.Itoa(u.Info.Rating), pairFirstPos, fontGem, numberColor, textShadow),
		TextOp(string(u.Shape), pairSecondPos, fontGem, numberColor, textShadow),
	}
	if u.Info.Note != "" {
		ops = append(ops, TextOp(u.Info.Note, NotePos, fontGem, textColor, textShadow))
	}
	return ops
}

func articleText(a *model.Article, kind Kind) []DrawOp {
	extra := a.Info.ExtraInfo
	if extra == nil {
		extra = &model.ExtraInfo{}
	}

	switch kind {
	case KindWeapon:
		ops := []DrawOp{TextOp(WeaponName(a), NamePos, fontText, textColor, textShadow)}
		if d := extra.Damage; d != nil {
			ops = append(ops, numbers(d.Physical, d.Blood, d.Arcane, d.Fire, d.Bolt)...)
		}
		return ops

	case KindArmor:
		ops := []DrawOp{TextOp(a.Info.ItemName, NamePos, fontText, textColor, textShadow)}
		var values []model.Value
		if p := extra.PhysicalDefense; p != nil {
			values = append(values, p.Physical, p.Blunt, p.Thrust, p.Blood)
		}
		if e := extra.ElementalDefense; e != nil {
			values = append(values, e.Arcane, e.Fire, e.Bolt)
		}
		return append(ops, numbers(values...)...)

	case KindChalice:
		return []DrawOp{
			TextOp(extra.Depth.String(), pairFirstPos, fontText, textColor, textShadow),
			TextOp(extra.Area.String(), pairSecondPos, fontText, textColor, textShadow),
			TextOp(a.Info.ItemName, NamePos, fontText, textColor, textShadow),
			TextOp(a.Info.ItemDesc, NotePos, fontText, textColor, textShadow),
		}
	}

	ops := []DrawOp{
		TextOp(a.Info.ItemName, NamePos, fontText, textColor, textShadow),
		TextOp(a.Info.ItemDesc, NotePos, fontText, textColor, textShadow),
	}
	if kind == KindItem {
		ops = append(ops, TextOp(
			strconv.FormatUint(uint64(a.Amount), 10),
			QuantityPos(a.Amount), fontQuantity, quantityColor, textShadow,
		))
	}
	return ops
}

func numbers(values ...model.Value) []DrawOp {
	ops := make([]DrawOp, 0, len(values))
	for i, v := range values {
		ops = append(ops, TextOp(v.String(), statColumn(i), fontText, numberColor, textShadow))
	}
	return ops
}

// WeaponName 刻印 + 名称 + 强化等级
func WeaponName(a *model.Article) string {
	level, imprint := a.Weapon()
	name := a.Info.ItemName
	if imprint != model.ImprintNone {
		name = string(imprint) + " " + name
	}
	if level > 0 {
		name += " +" + strconv.Itoa(level)
	}
	return name
}
