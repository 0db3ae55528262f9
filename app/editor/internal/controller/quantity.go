package controller

import "github.com/lk2023060901/xdooria-editor/app/editor/internal/model"

// QuantityConfig 可堆叠物品数量上限
type QuantityConfig struct {
	// DefaultCap 背包与仓库的一般上限
	DefaultCap uint32 `mapstructure:"default_cap" json:"default_cap" yaml:"default_cap" validate:"gt=0"`
	// StorageCap 仓库中材料及 StorageBulk 所列消耗品的上限
	StorageCap uint32 `mapstructure:"storage_cap" json:"storage_cap" yaml:"storage_cap" validate:"gtefield=DefaultCap"`
	// StorageBulk 仓库中按 StorageCap 计的消耗品名称
	StorageBulk []string `mapstructure:"storage_bulk" json:"storage_bulk" yaml:"storage_bulk"`
}

// DefaultQuantityConfig 默认上限
func DefaultQuantityConfig() *QuantityConfig {
	return &QuantityConfig{
		DefaultCap:  99,
		StorageCap:  600,
		StorageBulk: []string{"Quicksilver Bullets", "Blood Vial"},
	}
}

// CapFor 物品在给定位置的数量上限
func (c *QuantityConfig) CapFor(a *model.Article, loc model.Location) uint32 {
	if loc != model.LocationStorage {
		return c.DefaultCap
	}
	if a.ArticleType == model.ArticleMaterial {
		return c.StorageCap
	}
	if a.ArticleType == model.ArticleConsumable {
		for _, name := range c.StorageBulk {
			if a.Info.ItemName == name {
				return c.StorageCap
			}
		}
	}
	return c.DefaultCap
}

// Clamp 截断到上限
func (c *QuantityConfig) Clamp(a *model.Article, loc model.Location, amount uint32) uint32 {
	if limit := c.CapFor(a, loc); amount > limit {
		return limit
	}
	return amount
}
