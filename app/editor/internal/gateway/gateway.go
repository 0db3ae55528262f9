// Package gateway 是通往后端权威端的类型化请求/回复边界。
//
// 每条命令在发出时分配单调递增的序列号；成功时返回完整的替换快照，
// 失败时返回 CommandError。
package gateway

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
	"github.com/lk2023060901/xdooria-editor/pkg/seqid"
)

// Transport 把一条命令送到后端并把结果解码到 out
// out 为 nil 时丢弃结果
type Transport interface {
	Call(ctx context.Context, seq uint64, command string, params any, out any) error
}

// Tracker 在途命令登记（由 store 实现）
type Tracker interface {
	Begin(seq uint64, command string)
	Abort(seq uint64)
}

// Recorder 命令指标
type Recorder interface {
	RecordCommand(command string, success bool, duration time.Duration)
}

// Reply 命令成功后的回复
type Reply struct {
	Seq      uint64
	Snapshot *model.Snapshot
}

// Option Gateway 选项
type Option func(*Gateway)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// WithTracker 设置在途命令登记
func WithTracker(t Tracker) Option {
	return func(g *Gateway) {
		g.tracker = t
	}
}

// WithRecorder 设置指标记录
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		g.recorder = r
	}
}

// WithSequence 设置序列号生成器
func WithSequence(s seqid.Generator) Option {
	return func(g *Gateway) {
		g.seq = s
	}
}

// WithCallTimeout 单条命令等待回复的上限，0 表示只受调用方 ctx 约束
func WithCallTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// Gateway 命令网关
type Gateway struct {
	transport Transport
	seq       seqid.Generator
	tracker   Tracker
	recorder  Recorder
	logger    logger.Logger
	timeout   time.Duration
}

// New 创建网关
func New(t Transport, opts ...Option) (*Gateway, error) {
	if t == nil {
		return nil, errors.New("gateway: nil transport")
	}
	g := &Gateway{
		transport: t,
		logger:    logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seq == nil {
		seq, err := seqid.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "gateway: create sequence")
		}
		g.seq = seq
	}
	g.logger = g.logger.Named("gateway")
	return g, nil
}

// Invoke 发出一条返回快照的命令
func (g *Gateway) Invoke(ctx context.Context, req Request) (*Reply, error) {
	var snapshot model.Snapshot
	seq, err := g.call(ctx, req, &snapshot, true)
	if err != nil {
		return nil, err
	}
	snapshot.Normalize()
	return &Reply{Seq: seq, Snapshot: &snapshot}, nil
}

// Query 发出一条只读命令，结果解码到 out
func (g *Gateway) Query(ctx context.Context, req Request, out any) error {
	_, err := g.call(ctx, req, out, false)
	return err
}

func (g *Gateway) call(ctx context.Context, req Request, out any, track bool) (uint64, error) {
	command := req.Command()
	seq := g.seq.Next()
	ctx = logger.WithCommand(ctx, command, seq)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if track && g.tracker != nil {
		g.tracker.Begin(seq, command)
	}
	g.logger.DebugContext(ctx, "command issued")

	start := time.Now()
	err := g.transport.Call(ctx, seq, command, req, out)
	elapsed := time.Since(start)

	if g.recorder != nil {
		g.recorder.RecordCommand(command, err == nil, elapsed)
	}
	if err != nil {
		if track && g.tracker != nil {
			g.tracker.Abort(seq)
		}
		g.logger.ErrorContext(ctx, "command failed", "error", err, "elapsed", elapsed)
		return seq, &CommandError{Command: command, Seq: seq, Err: err}
	}

	g.logger.DebugContext(ctx, "command completed", "elapsed", elapsed)
	return seq, nil
}
