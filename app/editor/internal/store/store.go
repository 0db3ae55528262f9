// Package store 持有当前存档快照。
//
// 快照只能被整体替换：Replace 无条件替换，Apply 按命令序列号收敛，
// 早于水位线的回复会被丢弃。每次替换后按订阅顺序通知监听者。
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
	"github.com/lk2023060901/xdooria-editor/pkg/seqid"
)

// Listener 快照替换回调；s 只读，回调内不得修改 store
type Listener func(s *model.Snapshot, version uint64)

// Recorder 过期回复统计
type Recorder interface {
	RecordStale(command string)
}

// Pending 在途命令
type Pending struct {
	Seq     uint64
	Command string
	Since   time.Time
}

// Option Store 选项
type Option func(*Store)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithRecorder 设置统计
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		s.recorder = r
	}
}

type subscription struct {
	id uint64
	fn Listener
}

// Store 快照容器
type Store struct {
	logger   logger.Logger
	recorder Recorder

	// dispatch 串行化“替换+通知”，保证监听者按版本顺序收到快照
	dispatch sync.Mutex

	mu        sync.RWMutex
	snapshot  *model.Snapshot
	version   uint64
	watermark seqid.Watermark
	inflight  map[uint64]Pending
	listeners []subscription
	nextID    uint64
}

// New 创建空 store（未加载存档）
func New(opts ...Option) *Store {
	s := &Store{
		logger:   logger.NewNoop(),
		inflight: make(map[uint64]Pending),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("store")
	return s
}

// Current 当前快照，未加载时为 nil
func (s *Store) Current() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Version 替换次数
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Loaded 是否已有快照
func (s *Store) Loaded() bool {
	return s.Current() != nil
}

// Replace 无条件整体替换
func (s *Store) Replace(snapshot *model.Snapshot) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	version := s.swap(snapshot)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, snapshot, version)
}

// Apply 应用序列号为 seq 的命令回复；seq 不大于已应用的最大序列号时丢弃并返回 false
func (s *Store) Apply(seq uint64, snapshot *model.Snapshot) bool {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	pending, tracked := s.inflight[seq]
	delete(s.inflight, seq)

	if !s.watermark.Accept(seq) {
		last := s.watermark.Last()
		s.mu.Unlock()

		s.logger.Warn("stale reply discarded",
			"seq", seq,
			"command", pending.Command,
			"watermark", last,
		)
		if s.recorder != nil {
			s.recorder.RecordStale(pending.Command)
		}
		return false
	}

	version := s.swap(snapshot)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if tracked {
		s.logger.Debug("reply applied",
			"seq", seq,
			"command", pending.Command,
			"version", version,
			"elapsed", time.Since(pending.Since),
		)
	}
	s.notify(listeners, snapshot, version)
	return true
}

// Reset 丢弃快照并重置水位线，回到未加载状态
func (s *Store) Reset() {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	s.watermark.Reset()
	s.inflight = make(map[uint64]Pending)
	version := s.swap(nil)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, nil, version)
}

// Begin 登记在途命令
func (s *Store) Begin(seq uint64, command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[seq] = Pending{Seq: seq, Command: command, Since: time.Now()}
}

// Abort 命令失败，取消登记，快照不变
func (s *Store) Abort(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, seq)
}

// InFlight 在途命令，按序列号升序
func (s *Store) InFlight() []Pending {
	s.mu.RLock()
	out := make([]Pending, 0, len(s.inflight))
	for _, p := range s.inflight {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Subscribe 订阅快照替换，返回取消函数
func (s *Store) Subscribe(fn func(snapshot *model.Snapshot, version uint64)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// swap 调用方持有 mu
func (s *Store) swap(snapshot *model.Snapshot) uint64 {
	s.snapshot = snapshot
	s.version++
	return s.version
}

func (s *Store) snapshotListeners() []subscription {
	return append([]subscription(nil), s.listeners...)
}

func (s *Store) notify(listeners []subscription, snapshot *model.Snapshot, version uint64) {
	for _, sub := range listeners {
		sub.fn(snapshot, version)
	}
}
