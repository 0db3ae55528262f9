package controller

import (
	"context"
	"encoding/json"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/catalog"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

func encodeSnapshot(s *model.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// ArticleRef 定位一件物品
type ArticleRef struct {
	Location model.Location
	Type     model.ArticleType
	Index    int
}

func (c *Controller) article(op string, ref ArticleRef) (*model.Snapshot, *model.Article, error) {
	s, err := c.current(op)
	if err != nil {
		return nil, nil, err
	}
	a, ok := s.Article(ref.Location, ref.Type, ref.Index)
	if !ok {
		return nil, nil, invalid(op, "no %s at %s index %d", ref.Type, ref.Location, ref.Index)
	}
	return s, a, nil
}

// EditQuantity 修改数量；超过上限的值被截断，小于 1 被拒绝
func (c *Controller) EditQuantity(ctx context.Context, ref ArticleRef, amount uint32) (*model.Snapshot, error) {
	const op = "edit_quantity"
	_, a, err := c.article(op, ref)
	if err != nil {
		return nil, err
	}
	if !a.ArticleType.Stackable() {
		return nil, invalid(op, "%s is not stackable", a.ArticleType)
	}
	if amount < 1 {
		return nil, invalid(op, "amount must be at least 1")
	}

	value := c.Quantity().Clamp(a, ref.Location, amount)
	if value != amount {
		c.logger.Debug("quantity clamped", "item", a.Info.ItemName, "requested", amount, "cap", value)
	}
	return c.invoke(ctx, gateway.EditQuantity{
		ID:          a.ID,
		ArticleType: ref.Type,
		Index:       ref.Index,
		Value:       value,
		IsStorage:   ref.Location.IsStorage(),
	})
}

// Transform 替换物品身份，replacement 必须与原物品同族
func (c *Controller) Transform(ctx context.Context, ref ArticleRef, replacement *catalog.Entry) (*model.Snapshot, error) {
	const op = "transform_item"
	_, a, err := c.article(op, ref)
	if err != nil {
		return nil, err
	}
	if replacement == nil {
		return nil, invalid(op, "no replacement chosen")
	}
	if replacement.Family() != a.ArticleType.Family() {
		return nil, invalid(op, "cannot replace %s with %s", a.ArticleType.Family(), replacement.Family())
	}
	return c.invoke(ctx, gateway.TransformItem{
		Index:       ref.Index,
		ID:          a.ID,
		NewID:       replacement.ID,
		ArticleType: ref.Type,
		IsStorage:   ref.Location.IsStorage(),
	})
}

// AddItem 添加物品；目录已加载时校验 id
func (c *Controller) AddItem(ctx context.Context, loc model.Location, id, quantity uint32) (*model.Snapshot, error) {
	const op = "add_item"
	if _, err := c.current(op); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, invalid(op, "quantity must be at least 1")
	}
	if cat := c.Catalog(); cat != nil {
		if _, ok := cat.Lookup(id); !ok {
			return nil, invalid(op, "unknown article id %d", id)
		}
	}
	return c.invoke(ctx, gateway.AddItem{ID: id, Quantity: quantity, IsStorage: loc.IsStorage()})
}

// ===== 槽位与宝石 =====

func (c *Controller) slot(op string, ref ArticleRef, slotIndex int) (*model.Snapshot, *model.Slot, error) {
	s, a, err := c.article(op, ref)
	if err != nil {
		return nil, nil, err
	}
	if slotIndex < 0 || slotIndex >= len(a.Slots) {
		return nil, nil, invalid(op, "%s has no slot %d", a.Info.ItemName, slotIndex)
	}
	return s, &a.Slots[slotIndex], nil
}

// EquipGem 把背包中第 gemIndex 颗宝石装入槽位；槽位已有宝石时先卸下并等待完成
func (c *Controller) EquipGem(ctx context.Context, ref ArticleRef, slotIndex, gemIndex int) (*model.Snapshot, error) {
	const op = "equip_gem"
	s, slot, err := c.slot(op, ref, slotIndex)
	if err != nil {
		return nil, err
	}
	if slot.Shape == model.ShapeClosed {
		return nil, invalid(op, "slot %d is closed", slotIndex)
	}
	gem, ok := s.Upgrade(model.LocationInventory, model.UpgradeGem, gemIndex)
	if !ok {
		return nil, invalid(op, "no gem selected")
	}
	gemID := gem.ID

	if slot.Occupied() {
		s, err = c.invoke(ctx, gateway.UnequipGem{
			ArticleType:  ref.Type,
			ArticleIndex: ref.Index,
			SlotIndex:    slotIndex,
			IsStorage:    ref.Location.IsStorage(),
		})
		if err != nil {
			return nil, err
		}
		// 卸下的宝石回到背包，重新按 id 定位
		if gemIndex, ok = gemIndexByID(s, gemID); !ok {
			return nil, invalid(op, "gem %d disappeared after unequip", gemID)
		}
	}

	return c.invoke(ctx, gateway.EquipGem{
		UpgradeIndex: gemIndex,
		ArticleType:  ref.Type,
		ArticleIndex: ref.Index,
		SlotIndex:    slotIndex,
		IsStorage:    ref.Location.IsStorage(),
	})
}

func gemIndexByID(s *model.Snapshot, id uint32) (int, bool) {
	for i, g := range s.Inventory.Upgrades[model.UpgradeGem] {
		if g.ID == id {
			return i, true
		}
	}
	return 0, false
}

// UnequipGem 卸下槽位中的宝石
func (c *Controller) UnequipGem(ctx context.Context, ref ArticleRef, slotIndex int) (*model.Snapshot, error) {
	const op = "unequip_gem"
	_, slot, err := c.slot(op, ref, slotIndex)
	if err != nil {
		return nil, err
	}
	if !slot.Occupied() {
		return nil, invalid(op, "slot %d is empty", slotIndex)
	}
	return c.invoke(ctx, gateway.UnequipGem{
		ArticleType:  ref.Type,
		ArticleIndex: ref.Index,
		SlotIndex:    slotIndex,
		IsStorage:    ref.Location.IsStorage(),
	})
}

// EditSlotShape 修改槽位形状，后端会清除槽位中的宝石
func (c *Controller) EditSlotShape(ctx context.Context, ref ArticleRef, slotIndex int, shape model.Shape) (*model.Snapshot, error) {
	const op = "edit_slot"
	_, _, err := c.slot(op, ref, slotIndex)
	if err != nil {
		return nil, err
	}
	if !model.ValidShape(shape, model.SlotShapes) {
		return nil, invalid(op, "shape %q is not a slot shape", shape)
	}
	return c.invoke(ctx, gateway.EditSlot{
		IsStorage:    ref.Location.IsStorage(),
		ArticleType:  ref.Type,
		ArticleIndex: ref.Index,
		SlotIndex:    slotIndex,
		NewShape:     shape,
	})
}
