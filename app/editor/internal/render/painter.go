package render

import (
	"image"
	stddraw "image/draw"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

// ImageSource Painter 取图的来源
type ImageSource interface {
	Get(key string) (image.Image, bool)
}

// FaceFunc 按字号返回字体
type FaceFunc func(f Font) font.Face

// PainterOption Painter 选项
type PainterOption func(*Painter)

// WithFace 设置字体来源，默认使用 basicfont
func WithFace(fn FaceFunc) PainterOption {
	return func(p *Painter) {
		p.face = fn
	}
}

// WithPainterLogger 设置日志
func WithPainterLogger(l logger.Logger) PainterOption {
	return func(p *Painter) {
		p.logger = l.Named("render.painter")
	}
}

// Painter 执行绘制指令
type Painter struct {
	images ImageSource
	face   FaceFunc
	scaler draw.Scaler
	logger logger.Logger
}

// NewPainter 创建 Painter
func NewPainter(images ImageSource, opts ...PainterOption) *Painter {
	p := &Painter{
		images: images,
		face:   func(Font) font.Face { return basicfont.Face7x13 },
		scaler: draw.ApproxBiLinear,
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Paint 依次执行指令；缺失的图片以占位图代替，占位图也缺失时跳过
func (p *Painter) Paint(dst draw.Image, ops []DrawOp) {
	for _, op := range ops {
		switch op.Kind {
		case OpImage:
			p.paintImage(dst, op)
		case OpText:
			p.paintText(dst, op)
		}
	}
}

// Canvas 按背景图尺寸创建画布并绘制
func (p *Painter) Canvas(ops []DrawOp) *image.RGBA {
	bounds := image.Rect(0, 0, 1, 1)
	if len(ops) > 0 && ops[0].Kind == OpImage {
		if bg, ok := p.lookup(ops[0].Image); ok {
			bounds = bg.Bounds().Sub(bg.Bounds().Min)
		}
	}
	canvas := image.NewRGBA(bounds)
	p.Paint(canvas, ops)
	return canvas
}

func (p *Painter) lookup(key string) (image.Image, bool) {
	if img, ok := p.images.Get(key); ok {
		return img, true
	}
	p.logger.Warn("image missing at paint time", "key", key)
	return p.images.Get(Placeholder)
}

func (p *Painter) paintImage(dst draw.Image, op DrawOp) {
	src, ok := p.lookup(op.Image)
	if !ok {
		return
	}
	if op.Rect.Empty() {
		r := src.Bounds()
		stddraw.Draw(dst, r.Sub(r.Min), src, r.Min, stddraw.Over)
		return
	}
	p.scaler.Scale(dst, op.Rect, src, src.Bounds(), draw.Over, nil)
}

func (p *Painter) paintText(dst draw.Image, op DrawOp) {
	if op.Text == "" {
		return
	}
	face := p.face(op.Font)
	if op.Shadow != nil {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(op.Shadow.Color),
			Face: face,
			Dot:  fixed.P(op.At.X+op.Shadow.OffsetX, op.At.Y+op.Shadow.OffsetY),
		}
		d.DrawString(op.Text)
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(op.Color),
		Face: face,
		Dot:  fixed.P(op.At.X, op.At.Y),
	}
	d.DrawString(op.Text)
}
