package controller

import (
	"context"
	"sort"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/identity"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// UpgradeEdit 对一颗宝石或符文的修改
type UpgradeEdit struct {
	Location model.Location
	Type     model.UpgradeType
	Index    int
	// Shape 为空表示不修改
	Shape model.Shape
	// Effects 效果槽位下标 → 新效果 id
	Effects map[int]uint32
}

// EditUpgrade 先改形状，再按槽位顺序逐条修改效果
func (c *Controller) EditUpgrade(ctx context.Context, edit UpgradeEdit) (*model.Snapshot, error) {
	const op = "edit_upgrade"
	s, err := c.current(op)
	if err != nil {
		return nil, err
	}
	u, ok := s.Upgrade(edit.Location, edit.Type, edit.Index)
	if !ok {
		return nil, invalid(op, "no %s at %s index %d", edit.Type, edit.Location, edit.Index)
	}

	var requests []gateway.Request
	if edit.Shape != "" && edit.Shape != u.Shape {
		if !model.ValidShape(edit.Shape, model.ShapesFor(edit.Type)) {
			return nil, invalid(op, "shape %q not allowed for %s", edit.Shape, edit.Type)
		}
		requests = append(requests, gateway.EditShape{
			UpgradeID:   u.ID,
			UpgradeType: edit.Type,
			NewShape:    edit.Shape,
		})
	}

	slots := make([]int, 0, len(edit.Effects))
	for i := range edit.Effects {
		slots = append(slots, i)
	}
	sort.Ints(slots)

	cat := c.Catalog()
	for _, i := range slots {
		id := edit.Effects[i]
		if i < 0 || i >= len(u.Effects) {
			return nil, invalid(op, "effect slot %d out of range", i)
		}
		if id == model.NoEffect {
			return nil, invalid(op, "effect slot %d: no-effect sentinel cannot be written", i)
		}
		if cat != nil {
			if _, ok := cat.Effect(edit.Type, id); !ok {
				return nil, invalid(op, "unknown %s effect %d", edit.Type, id)
			}
		}
		if u.Effects[i].ID == id {
			continue
		}
		requests = append(requests, gateway.EditEffect{
			UpgradeID:   u.ID,
			UpgradeType: edit.Type,
			NewEffectID: id,
			Index:       i,
		})
	}

	for _, req := range requests {
		if s, err = c.invoke(ctx, req); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UpgradeName 修改效果后展示用的名称（补上或去掉 Cursed 前缀）
func UpgradeName(u *model.Upgrade) string {
	if u.UpgradeType == model.UpgradeGem {
		return identity.AdjustCursedName(identity.GemDisplayName(u), u.Effects)
	}
	return u.Info.Name
}
