// Package catalog 把后端的 return_* 目录整理为有序列表，供替换、添加和效果选择使用。
package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// Entry 目录中的一件物品
type Entry struct {
	ID          uint32
	ArticleType model.ArticleType
	Info        model.ItemInfo
	// ArmorType 防具部位，仅防具有值
	ArmorType string
}

// Family 物品所属的族
func (e Entry) Family() model.TypeFamily {
	return e.ArticleType.Family()
}

// EffectOption 强化效果选项
type EffectOption struct {
	ID     uint32
	Label  string
	Rating int
	Level  int
	Name   string
	Note   string
}

// Catalog 完整目录
type Catalog struct {
	Weapons     []Entry
	Items       []Entry
	Armors      []Entry
	GemEffects  []EffectOption
	RuneEffects []EffectOption

	byID map[uint32]Entry
}

// Querier 只读命令通道（gateway.Gateway 实现）
type Querier interface {
	Query(ctx context.Context, req gateway.Request, out any) error
}

// Load 并发拉取五张目录表
func Load(ctx context.Context, q Querier) (*Catalog, error) {
	var (
		weapons     gateway.WeaponTable
		items       gateway.ItemTable
		armors      gateway.ArmorTable
		gemEffects  gateway.EffectTable
		runeEffects gateway.EffectTable
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return q.Query(ctx, gateway.ReturnWeapons{}, &weapons) })
	g.Go(func() error { return q.Query(ctx, gateway.ReturnItems{}, &items) })
	g.Go(func() error { return q.Query(ctx, gateway.ReturnArmors{}, &armors) })
	g.Go(func() error { return q.Query(ctx, gateway.ReturnGemEffects{}, &gemEffects) })
	g.Go(func() error { return q.Query(ctx, gateway.ReturnRuneEffects{}, &runeEffects) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "catalog: load")
	}

	return FromTables(weapons, items, armors, gemEffects, runeEffects)
}

// FromTables 整理目录表；条目按 id 升序，效果表中的哨兵 id 被剔除
func FromTables(
	weapons gateway.WeaponTable,
	items gateway.ItemTable,
	armors gateway.ArmorTable,
	gemEffects gateway.EffectTable,
	runeEffects gateway.EffectTable,
) (*Catalog, error) {
	c := &Catalog{byID: make(map[uint32]Entry)}

	var err error
	if c.Weapons, err = groupedEntries(weapons, func(e gateway.CatalogItem) model.ItemInfo {
		return model.ItemInfo{
			ItemName:  e.ItemName,
			ItemImg:   e.ItemImg,
			ItemDesc:  e.ItemDesc,
			ExtraInfo: &model.ExtraInfo{Damage: e.Damage},
		}
	}); err != nil {
		return nil, err
	}

	if c.Items, err = groupedEntries(items, func(e gateway.CatalogItem) model.ItemInfo {
		info := model.ItemInfo{ItemName: e.ItemName, ItemImg: e.ItemImg, ItemDesc: e.ItemDesc}
		if e.Depth != "" || e.Area != "" {
			info.ExtraInfo = &model.ExtraInfo{Depth: e.Depth, Area: e.Area}
		}
		return info
	}); err != nil {
		return nil, err
	}

	for key, a := range armors {
		id, err := parseID(key)
		if err != nil {
			return nil, err
		}
		c.Armors = append(c.Armors, Entry{
			ID:          id,
			ArticleType: model.ArticleArmor,
			ArmorType:   a.Type,
			Info: model.ItemInfo{
				ItemName: a.ItemName,
				ItemImg:  a.ItemImg,
				ItemDesc: a.ItemDesc,
				ExtraInfo: &model.ExtraInfo{
					PhysicalDefense:  a.PhysicalDefense,
					ElementalDefense: a.ElementalDefense,
					Resistance:       a.Resistance,
					Beasthood:        a.Beasthood,
				},
			},
		})
	}
	sortEntries(c.Armors)

	if c.GemEffects, err = effectOptions(gemEffects); err != nil {
		return nil, err
	}
	if c.RuneEffects, err = effectOptions(runeEffects); err != nil {
		return nil, err
	}

	for _, list := range [][]Entry{c.Weapons, c.Items, c.Armors} {
		for _, e := range list {
			c.byID[e.ID] = e
		}
	}
	return c, nil
}

func parseID(key string) (uint32, error) {
	id, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "catalog: id %q", key)
	}
	return uint32(id), nil
}

// articleType 目录分组名为小驼峰（rightHand），首字母大写即分类名
func articleType(group string) model.ArticleType {
	if group == "" {
		return ""
	}
	return model.ArticleType(strings.ToUpper(group[:1]) + group[1:])
}

func groupedEntries(table map[string]map[string]gateway.CatalogItem, info func(gateway.CatalogItem) model.ItemInfo) ([]Entry, error) {
	var out []Entry
	for group, entries := range table {
		t := articleType(group)
		for key, e := range entries {
			id, err := parseID(key)
			if err != nil {
				return nil, err
			}
			out = append(out, Entry{ID: id, ArticleType: t, Info: info(e)})
		}
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(list []Entry) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

func effectOptions(table gateway.EffectTable) ([]EffectOption, error) {
	out := make([]EffectOption, 0, len(table))
	for key, e := range table {
		id, err := parseID(key)
		if err != nil {
			return nil, err
		}
		if id == model.NoEffect {
			continue
		}
		out = append(out, EffectOption{
			ID:     id,
			Label:  e.Effect,
			Rating: e.Rating,
			Level:  e.Level,
			Name:   e.Name,
			Note:   e.Note,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Lookup 按 id 查找物品
func (c *Catalog) Lookup(id uint32) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Effects 强化物类型对应的效果选项
func (c *Catalog) Effects(t model.UpgradeType) []EffectOption {
	if t == model.UpgradeRune {
		return c.RuneEffects
	}
	return c.GemEffects
}

// Effect 按 id 查找效果
func (c *Catalog) Effect(t model.UpgradeType, id uint32) (EffectOption, bool) {
	for _, e := range c.Effects(t) {
		if e.ID == id {
			return e, true
		}
	}
	return EffectOption{}, false
}

// Candidates 替换候选：武器与防具取整个族，其余只取同一分类；keyword 按名称过滤（不区分大小写）
func (c *Catalog) Candidates(t model.ArticleType, keyword string) []Entry {
	var pool []Entry
	switch t.Family() {
	case model.FamilyWeapon:
		pool = c.Weapons
	case model.FamilyArmor:
		pool = c.Armors
	default:
		for _, e := range c.Items {
			if e.ArticleType == t {
				pool = append(pool, e)
			}
		}
	}
	return Search(pool, keyword)
}

// All 全部物品，供添加物品时搜索
func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.Weapons)+len(c.Items)+len(c.Armors))
	out = append(out, c.Weapons...)
	out = append(out, c.Items...)
	out = append(out, c.Armors...)
	return out
}

// Search 名称包含 keyword 的条目
func Search(entries []Entry, keyword string) []Entry {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Info.ItemName), keyword) {
			out = append(out, e)
		}
	}
	return out
}
