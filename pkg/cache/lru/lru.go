package lru

import (
	"container/list"
	"sync"
	"time"
)

// Cache 通用缓存接口
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	SetWithTTL(key K, value V, ttl time.Duration)
	GetOrCreate(key K, create func() V) V
	Delete(key K)
	Len() int
	Clear()
	Close() error
}

// Config LRU 配置
type Config struct {
	// MaxSize 最大容量
	MaxSize int
	// DefaultTTL 默认过期时间，0 表示永不过期
	DefaultTTL time.Duration
	// CleanupInterval 后台清理间隔，0 表示不启动清理协程
	CleanupInterval time.Duration
}

// LRU 基于内存的 LRU 缓存实现
type LRU[K comparable, V any] struct {
	config    Config
	cache     *list.List
	items     map[K]*list.Element
	mu        sync.Mutex
	stopCh    chan struct{}
	closeOnce sync.Once

	onEvict func(key K, value V)
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // 零值表示永不过期
}

func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Option LRU 配置选项
type Option[K comparable, V any] func(*LRU[K, V])

// WithOnEvict 设置淘汰回调（Clear 不触发）
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = fn
	}
}

// New 创建 LRU 缓存
func New[K comparable, V any](cfg *Config, opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{
		config: *cfg,
		cache:  list.New(),
		items:  make(map[K]*list.Element),
		stopCh: make(chan struct{}),
	}
	if c.config.MaxSize <= 0 {
		c.config.MaxSize = 128
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

func (c *LRU[K, V]) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LRU[K, V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for e := c.cache.Back(); e != nil; {
		prev := e.Prev()
		if e.Value.(*entry[K, V]).expired(now) {
			c.removeElement(e)
		}
		e = prev
	}
}

// Get 获取值
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *LRU[K, V]) get(key K) (V, bool) {
	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := elem.Value.(*entry[K, V])
	if ent.expired(time.Now()) {
		c.removeElement(elem)
		return zero, false
	}
	c.cache.MoveToFront(elem)
	return ent.value, true
}

// Set 设置值（使用默认 TTL）
func (c *LRU[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL 设置值（自定义 TTL）
func (c *LRU[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

func (c *LRU[K, V]) set(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		c.cache.MoveToFront(elem)
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = expiresAt
		return
	}

	c.items[key] = c.cache.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
	for c.cache.Len() > c.config.MaxSize {
		c.removeElement(c.cache.Back())
	}
}

// GetOrCreate 原子获取或创建，create 在锁内执行
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.get(key); ok {
		return v
	}
	v := create()
	c.set(key, v, c.config.DefaultTTL)
	return v
}

// Delete 删除
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Len 返回当前缓存大小
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Clear 清空缓存
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Init()
	c.items = make(map[K]*list.Element)
}

// Close 停止后台清理
func (c *LRU[K, V]) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	c.cache.Remove(elem)
	ent := elem.Value.(*entry[K, V])
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
