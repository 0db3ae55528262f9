package render

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/index"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// Fingerprint 记录内容的哈希，内容相同则绘制结果相同
func Fingerprint(r model.Record) uint64 {
	d := xxhash.New()
	if err := json.NewEncoder(d).Encode(r); err != nil {
		return 0
	}
	return d.Sum64()
}

type tile struct {
	fingerprint uint64
	ops         []DrawOp
}

// Board 一个位置上全部记录的绘制结果
// 快照替换后只重新生成内容发生变化的记录
type Board struct {
	mu       sync.RWMutex
	location model.Location
	images   Images
	tiles    map[string]tile
	onRender func(key string, ops []DrawOp)
}

// BoardOption Board 选项
type BoardOption func(*Board)

// WithOnRender 每条记录重新生成后回调，用于触发绘制
func WithOnRender(fn func(key string, ops []DrawOp)) BoardOption {
	return func(b *Board) {
		b.onRender = fn
	}
}

// NewBoard 创建 Board
func NewBoard(location model.Location, images Images, opts ...BoardOption) *Board {
	b := &Board{
		location: location,
		images:   images,
		tiles:    make(map[string]tile),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Sync 与快照对齐，返回重新生成的记录键（有序）
func (b *Board) Sync(s *model.Snapshot) []string {
	var records []model.Record
	if s != nil {
		records = index.Filter(s.Container(b.location), nil)
	}

	type rendered struct {
		key string
		ops []DrawOp
	}
	var changed []rendered

	b.mu.Lock()
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		key := r.Key()
		seen[key] = struct{}{}
		fp := Fingerprint(r)
		if t, ok := b.tiles[key]; ok && t.fingerprint == fp {
			continue
		}
		ops := Render(r, b.images)
		b.tiles[key] = tile{fingerprint: fp, ops: ops}
		changed = append(changed, rendered{key, ops})
	}
	for key := range b.tiles {
		if _, ok := seen[key]; !ok {
			delete(b.tiles, key)
		}
	}
	b.mu.Unlock()

	sort.Slice(changed, func(i, j int) bool { return changed[i].key < changed[j].key })
	keys := make([]string, len(changed))
	for i, c := range changed {
		keys[i] = c.key
		if b.onRender != nil {
			b.onRender(c.key, c.ops)
		}
	}
	return keys
}

// Ops 记录当前的绘制指令
func (b *Board) Ops(key string) ([]DrawOp, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tiles[key]
	return t.ops, ok
}

// Len 记录数
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tiles)
}

// Bind 订阅快照替换
func (b *Board) Bind(src index.Subscriber) (cancel func()) {
	return src.Subscribe(func(s *model.Snapshot, _ uint64) {
		b.Sync(s)
	})
}
