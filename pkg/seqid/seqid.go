// Package seqid 命令序列号：生成单调递增的序列号，并按水位线丢弃过期回复
package seqid

import (
	"sync/atomic"

	"github.com/lk2023060901/xdooria-editor/pkg/config"
)

// Config 序列号配置
type Config struct {
	// 初始序列号，第一次 Next 返回 InitialSeqId+1
	InitialSeqId uint64
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{InitialSeqId: 0}
}

// Generator 序列号生成器
type Generator interface {
	// Next 生成下一个序列号（跳过保留值 0）
	Next() uint64
	// Current 最近一次生成的序列号
	Current() uint64
}

type generator struct {
	current atomic.Uint64
}

// New 创建序列号生成器
func New(cfg *Config) (Generator, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	g := &generator{}
	g.current.Store(merged.InitialSeqId)
	return g, nil
}

func (g *generator) Next() uint64 {
	next := g.current.Add(1)
	if next == 0 {
		next = g.current.Add(1)
	}
	return next
}

func (g *generator) Current() uint64 {
	return g.current.Load()
}

// Watermark 记录已应用的最大序列号
// 同一个序列号只能被接受一次；小于水位线的回复视为过期
type Watermark struct {
	last atomic.Uint64
}

// Accept 尝试推进水位线，返回 false 表示 seq 已过期
func (w *Watermark) Accept(seq uint64) bool {
	for {
		last := w.last.Load()
		if seq <= last {
			return false
		}
		if w.last.CompareAndSwap(last, seq) {
			return true
		}
	}
}

// Last 当前水位线
func (w *Watermark) Last() uint64 {
	return w.last.Load()
}

// Reset 重置水位线（重新打开存档时）
func (w *Watermark) Reset() {
	w.last.Store(0)
}
