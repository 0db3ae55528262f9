// Package index 把快照中的物品按固定分类投影为可筛选的条目列表。
package index

import (
	"strings"
	"sync"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/pkg/cache/lru"
)

// Filter 返回指定分类的条目；category 为 nil 时按分类声明顺序拼接全部条目
func Filter(inv *model.Inventory, category *model.Category) []model.Record {
	if inv == nil {
		return nil
	}
	if category != nil {
		return collect(inv, *category, nil)
	}
	var out []model.Record
	for _, c := range model.Categories {
		out = collect(inv, c, out)
	}
	return out
}

func collect(inv *model.Inventory, c model.Category, out []model.Record) []model.Record {
	if t, ok := c.ArticleType(); ok {
		list := inv.Articles[t]
		for i := range list {
			out = append(out, &list[i])
		}
		return out
	}
	if t, ok := c.UpgradeType(); ok {
		list := inv.Upgrades[t]
		for i := range list {
			out = append(out, &list[i])
		}
	}
	return out
}

// Search 名称包含关键字的条目（不区分大小写）
func Search(records []model.Record, keyword string) []model.Record {
	if keyword == "" {
		return records
	}
	keyword = strings.ToLower(keyword)
	var out []model.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name()), keyword) {
			out = append(out, r)
		}
	}
	return out
}

// NoSelection 未选中任何条目
const NoSelection = -1

// Config 视图配置
type Config struct {
	// MemoSize 缓存的筛选结果数量
	MemoSize int `mapstructure:"memo_size" json:"memo_size" yaml:"memo_size" validate:"gte=0"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{MemoSize: 2 * len(model.Categories)}
}

type memoKey struct {
	snapshot *model.Snapshot
	location model.Location
	category model.Category
	all      bool
}

// View 一个背包（或仓库）页面的筛选与选中状态
type View struct {
	mu       sync.Mutex
	location model.Location
	active   *model.Category
	selected int
	memo     *lru.LRU[memoKey, []model.Record]
}

// NewView 创建视图
func NewView(location model.Location, cfg *Config) *View {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &View{
		location: location,
		selected: NoSelection,
		memo:     lru.New[memoKey, []model.Record](&lru.Config{MaxSize: cfg.MemoSize}),
	}
}

// Location 视图对应的位置
func (v *View) Location() model.Location {
	return v.location
}

// Toggle 选择分类，再次选择当前分类则清除筛选；任何变化都会清除选中
func (v *View) Toggle(c model.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.active != nil && *v.active == c {
		v.active = nil
	} else {
		v.active = &c
	}
	v.selected = NoSelection
}

// Clear 清除筛选
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = nil
	v.selected = NoSelection
}

// Active 当前筛选分类
func (v *View) Active() (model.Category, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.active == nil {
		return 0, false
	}
	return *v.active, true
}

// Select 选中第 i 个条目
func (v *View) Select(i int) {
	v.mu.Lock()
	v.selected = i
	v.mu.Unlock()
}

// Selected 当前选中下标，未选中时为 NoSelection
func (v *View) Selected() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// Records 当前筛选下的条目，结果按 (快照, 位置, 分类) 缓存
func (v *View) Records(s *model.Snapshot) []model.Record {
	if s == nil {
		return nil
	}
	v.mu.Lock()
	active := v.active
	v.mu.Unlock()

	key := memoKey{snapshot: s, location: v.location, all: active == nil}
	if active != nil {
		key.category = *active
	}
	return v.memo.GetOrCreate(key, func() []model.Record {
		return Filter(s.Container(v.location), active)
	})
}

// SelectedRecord 当前选中的条目
func (v *View) SelectedRecord(s *model.Snapshot) (model.Record, bool) {
	records := v.Records(s)
	i := v.Selected()
	if i < 0 || i >= len(records) {
		return nil, false
	}
	return records[i], true
}

// Invalidate 丢弃缓存的筛选结果，每次快照替换后调用
func (v *View) Invalidate() {
	v.memo.Clear()
}

// Subscriber 快照替换通知源
type Subscriber interface {
	Subscribe(fn func(s *model.Snapshot, version uint64)) (cancel func())
}

// Bind 订阅快照替换以自动失效缓存
func (v *View) Bind(src Subscriber) (cancel func()) {
	return src.Subscribe(func(*model.Snapshot, uint64) {
		v.Invalidate()
	})
}

// Close 释放缓存
func (v *View) Close() error {
	return v.memo.Close()
}
