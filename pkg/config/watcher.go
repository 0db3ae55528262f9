// pkg/config/watcher.go
package config

import (
	"sync"
)

// Watcher 配置热更新：文件变化后重新解析为 T 并通知订阅者
type Watcher[T any] struct {
	mgr       Manager
	decode    func(Manager, *T) error
	mu        sync.RWMutex
	current   *T
	callbacks []func(*T)
	onError   func(error)
}

// NewWatcher 基于已加载文件的 Manager 创建监听器
// decode 负责把 Manager 中的配置转换为 T（可以包含合并默认值与校验）
func NewWatcher[T any](mgr Manager, decode func(Manager, *T) error, onError func(error)) (*Watcher[T], error) {
	var cfg T
	if err := decode(mgr, &cfg); err != nil {
		return nil, err
	}
	w := &Watcher[T]{mgr: mgr, decode: decode, current: &cfg, onError: onError}
	if err := mgr.Watch(w.reload); err != nil {
		return nil, err
	}
	return w, nil
}

// Current 获取当前配置
func (w *Watcher[T]) Current() *T {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange 注册配置变化回调
func (w *Watcher[T]) OnChange(callback func(*T)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// reload 解析失败时保留旧配置
func (w *Watcher[T]) reload() {
	var next T
	if err := w.decode(w.mgr, &next); err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = &next
	callbacks := append([]func(*T){}, w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(&next)
	}
}
