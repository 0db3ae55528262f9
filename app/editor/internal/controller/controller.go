// Package controller 编排用户发起的编辑。
//
// 每个操作先在当前快照上校验（失败返回 ValidationError，不会发出命令），
// 再通过网关发出命令，并把回复快照交给 store。有依赖的多条命令逐条等待，
// 绝不并发发出会修改存档的命令。
package controller

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/catalog"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/store"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

// Gateway 命令通道
type Gateway interface {
	Invoke(ctx context.Context, req gateway.Request) (*gateway.Reply, error)
	Query(ctx context.Context, req gateway.Request, out any) error
}

// Option Controller 选项
type Option func(*Controller)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithQuantity 设置数量上限
func WithQuantity(cfg *QuantityConfig) Option {
	return func(c *Controller) {
		if cfg != nil {
			c.quantity = cfg
		}
	}
}

// Controller 编辑控制器
type Controller struct {
	gateway  Gateway
	store    *store.Store
	quantity *QuantityConfig
	logger   logger.Logger

	mu      sync.RWMutex
	catalog *catalog.Catalog
}

// New 创建控制器
func New(g Gateway, st *store.Store, opts ...Option) (*Controller, error) {
	if g == nil {
		return nil, errors.New("controller: nil gateway")
	}
	if st == nil {
		return nil, errors.New("controller: nil store")
	}
	c := &Controller{
		gateway:  g,
		store:    st,
		quantity: DefaultQuantityConfig(),
		logger:   logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("controller")
	return c, nil
}

// Store 控制器使用的 store
func (c *Controller) Store() *store.Store {
	return c.store
}

// Quantity 数量上限配置
func (c *Controller) Quantity() *QuantityConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quantity
}

// SetQuantity 替换数量上限，配置热更新时调用
func (c *Controller) SetQuantity(cfg *QuantityConfig) {
	if cfg == nil {
		return
	}
	c.mu.Lock()
	c.quantity = cfg
	c.mu.Unlock()
}

// invoke 发出命令并应用回复；回复过期时返回 store 中更新的快照
func (c *Controller) invoke(ctx context.Context, req gateway.Request) (*model.Snapshot, error) {
	reply, err := c.gateway.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if !c.store.Apply(reply.Seq, reply.Snapshot) {
		return c.store.Current(), nil
	}
	return reply.Snapshot, nil
}

func (c *Controller) current(op string) (*model.Snapshot, error) {
	s := c.store.Current()
	if s == nil {
		return nil, invalid(op, "no save loaded")
	}
	return s, nil
}

// ===== 存档 =====

// Open 打开存档（make_save）
func (c *Controller) Open(ctx context.Context, path string) (*model.Snapshot, error) {
	if path == "" {
		return nil, invalid("open", "empty path")
	}
	s, err := c.invoke(ctx, gateway.MakeSave{Path: path})
	if err != nil {
		return nil, err
	}
	c.logger.Info("save opened", "path", path, "username", s.Username.String)
	return s, nil
}

// Save 把当前快照写回 path，返回后端提示
func (c *Controller) Save(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", invalid("save", "empty path")
	}
	s, err := c.current("save")
	if err != nil {
		return "", err
	}
	data, err := encodeSnapshot(s)
	if err != nil {
		return "", errors.Wrap(err, "controller: encode snapshot")
	}
	var message string
	if err := c.gateway.Query(ctx, gateway.Save{Save: string(data), Path: path}, &message); err != nil {
		return "", err
	}
	c.logger.Info("save written", "path", path)
	return message, nil
}

// ===== 目录 =====

// LoadCatalog 拉取并缓存目录
func (c *Controller) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := catalog.Load(ctx, c.gateway)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.catalog = cat
	c.mu.Unlock()
	return cat, nil
}

// Catalog 已加载的目录，未加载时为 nil
func (c *Controller) Catalog() *catalog.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// ===== 角色 =====

// ExportAppearance 导出外观
func (c *Controller) ExportAppearance(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", invalid("export_appearance", "empty path")
	}
	var message string
	if err := c.gateway.Query(ctx, gateway.ExportAppearance{Path: path}, &message); err != nil {
		return "", err
	}
	return message, nil
}

// ImportAppearance 导入外观
func (c *Controller) ImportAppearance(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", invalid("import_appearance", "empty path")
	}
	var message string
	if err := c.gateway.Query(ctx, gateway.ImportAppearance{Path: path}, &message); err != nil {
		return "", err
	}
	return message, nil
}

// IszStatus 读取 isz 字节
func (c *Controller) IszStatus(ctx context.Context) (gateway.Isz, error) {
	var isz gateway.Isz
	if err := c.gateway.Query(ctx, gateway.GetIsz{}, &isz); err != nil {
		return nil, err
	}
	return isz, nil
}

// FixIsz 修复 isz 并重新读取
func (c *Controller) FixIsz(ctx context.Context) (string, gateway.Isz, error) {
	var message string
	if err := c.gateway.Query(ctx, gateway.FixIsz{}, &message); err != nil {
		return "", nil, err
	}
	isz, err := c.IszStatus(ctx)
	if err != nil {
		return message, nil, err
	}
	return message, isz, nil
}
