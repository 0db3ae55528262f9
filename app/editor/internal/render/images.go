package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	_ "golang.org/x/image/webp"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/index"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

// ImageSet 预加载后的图片集合，加载完成后只读
type ImageSet struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageSet 创建空集合
func NewImageSet() *ImageSet {
	return &ImageSet{images: make(map[string]image.Image)}
}

// Add 加入一张图片
func (s *ImageSet) Add(key string, img image.Image) {
	s.mu.Lock()
	s.images[key] = img
	s.mu.Unlock()
}

// Has 是否包含
func (s *ImageSet) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.images[key]
	return ok
}

// Get 获取图片
func (s *ImageSet) Get(key string) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[key]
	return img, ok
}

// Len 图片数量
func (s *ImageSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Keys 已加载的键（有序）
func (s *ImageSet) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.images))
	for k := range s.images {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// LoaderConfig 图片加载配置
type LoaderConfig struct {
	// Workers 并发解码的协程数
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers" validate:"gte=0"`
}

// DefaultLoaderConfig 默认配置
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{Workers: 8}
}

// AssetRecorder 统计加载失败的图片数
type AssetRecorder interface {
	RecordAssetFailures(n int)
}

// LoaderOption Loader 选项
type LoaderOption func(*Loader)

// WithAssetRecorder 设置失败统计
func WithAssetRecorder(r AssetRecorder) LoaderOption {
	return func(l *Loader) {
		l.recorder = r
	}
}

// Loader 从资源目录并发加载图片
type Loader struct {
	fsys     fs.FS
	config   *LoaderConfig
	logger   logger.Logger
	recorder AssetRecorder
}

// NewLoader 创建加载器，fsys 的根对应资源键中的 "/"
func NewLoader(fsys fs.FS, cfg *LoaderConfig, l logger.Logger, opts ...LoaderOption) *Loader {
	if cfg == nil || cfg.Workers <= 0 {
		cfg = DefaultLoaderConfig()
	}
	if l == nil {
		l = logger.NewNoop()
	}
	loader := &Loader{fsys: fsys, config: cfg, logger: l.Named("render.loader")}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

// Load 加载给定的键以及全部背景和占位图
// 单张图片失败只记录告警；占位图缺失时以空白图代替
func (l *Loader) Load(ctx context.Context, keys []string) (*ImageSet, error) {
	keys = dedupe(append(append([]string{Placeholder}, Backgrounds...), keys...))

	pool, err := ants.NewPool(l.config.Workers, ants.WithPanicHandler(func(p any) {
		l.logger.Error("image decode panicked", "panic", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "render: create loader pool")
	}
	defer pool.Release()

	set := NewImageSet()
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []*AssetError
	)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, errors.Wrap(err, "render: load images")
		}
		key := key
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			img, err := l.decode(key)
			if err != nil {
				mu.Lock()
				failed = append(failed, &AssetError{Key: key, Err: err})
				mu.Unlock()
				return
			}
			set.Add(key, img)
		})
		if submitErr != nil {
			wg.Done()
			return nil, errors.Wrap(submitErr, "render: submit decode")
		}
	}
	wg.Wait()

	for _, e := range failed {
		l.logger.Warn("asset unavailable, using placeholder", "key", e.Key, "error", e.Err)
	}
	if l.recorder != nil && len(failed) > 0 {
		l.recorder.RecordAssetFailures(len(failed))
	}
	if !set.Has(Placeholder) {
		set.Add(Placeholder, blank(ThumbRect.Dx(), ThumbRect.Dy()))
	}

	l.logger.Info("images loaded", "loaded", set.Len(), "failed", len(failed))
	return set, nil
}

func (l *Loader) decode(key string) (image.Image, error) {
	f, err := l.fsys.Open(strings.TrimPrefix(key, "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Mark(err, ErrAssetNotFound)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Mark(err, ErrAssetDecode)
	}
	return img, nil
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	return img
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// SnapshotKeys 快照中全部记录的缩略图键
func SnapshotKeys(s *model.Snapshot) []string {
	if s == nil {
		return nil
	}
	var keys []string
	for _, inv := range []*model.Inventory{&s.Inventory, &s.Storage} {
		for _, r := range index.Filter(inv, nil) {
			keys = append(keys, thumbnailKey(r))
		}
	}
	return dedupe(keys)
}
