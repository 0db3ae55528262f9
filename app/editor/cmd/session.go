package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/config"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/controller"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/index"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/render"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/store"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
)

type connector interface {
	Connect(ctx context.Context) error
}

type sessionOptions struct {
	save     string
	location string
	category string
	keyword  string
	paintDir string
	write    string
	fixIsz   bool
	watch    bool
}

// session 一次命令行编辑会话
type session struct {
	cfg        *config.Config
	logger     logger.Logger
	transport  connector
	controller *controller.Controller
	store      *store.Store
	assets     render.AssetRecorder
	opts       sessionOptions
	out        io.Writer
}

func parseLocation(name string) (model.Location, error) {
	switch strings.ToLower(name) {
	case "", "inventory":
		return model.LocationInventory, nil
	case "storage":
		return model.LocationStorage, nil
	}
	return 0, errors.Newf("unknown location %q", name)
}

func (s *session) run(ctx context.Context) error {
	loc, err := parseLocation(s.opts.location)
	if err != nil {
		return err
	}

	if err := s.transport.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect backend")
	}
	if _, err := s.controller.Open(ctx, s.opts.save); err != nil {
		return errors.Wrapf(err, "open %s", s.opts.save)
	}
	if _, err := s.controller.LoadCatalog(ctx); err != nil {
		s.logger.Warn("catalog unavailable", "error", err)
	}

	view := index.NewView(loc, &s.cfg.Index)
	defer view.Close()
	defer view.Bind(s.store)()
	if s.opts.category != "" {
		c, ok := model.ParseCategory(s.opts.category)
		if !ok {
			return errors.Newf("unknown category %q", s.opts.category)
		}
		view.Toggle(c)
	}

	if err := s.list(view); err != nil {
		return err
	}

	if s.opts.fixIsz {
		msg, isz, err := s.controller.FixIsz(ctx)
		if err != nil {
			return err
		}
		s.logger.Info(msg, "isz", isz)
	}

	if s.opts.paintDir != "" {
		cancel, err := s.paint(ctx, loc)
		if err != nil {
			return err
		}
		defer cancel()
	}

	if s.opts.write != "" {
		msg, err := s.controller.Save(ctx, s.opts.write)
		if err != nil {
			return err
		}
		s.logger.Info(msg)
	}

	if s.opts.watch {
		<-ctx.Done()
	}
	return nil
}

// list 打印角色概要与当前视图的记录
func (s *session) list(view *index.View) error {
	snap := s.store.Current()
	if snap == nil {
		return errors.New("no save loaded")
	}

	p := model.InterpretPlaytime(snap.Playtime)
	fmt.Fprintf(s.out, "%s  %d:%02d:%02d\n", snap.Username.String, p.Hours, p.Minutes, p.Seconds)

	records := view.Records(snap)
	if s.opts.keyword != "" {
		records = index.Search(records, s.opts.keyword)
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tCATEGORY\tNAME\tAMOUNT")
	for _, r := range records {
		amount := "-"
		if a, ok := r.(*model.Article); ok {
			amount = fmt.Sprint(a.Amount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Key(), r.Category(), r.Name(), amount)
	}
	return w.Flush()
}

// paint 把位置内每条记录绘制为 PNG，watch 时随快照替换重绘
func (s *session) paint(ctx context.Context, loc model.Location) (func(), error) {
	dir := s.opts.paintDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create paint dir")
	}

	loader := render.NewLoader(os.DirFS(s.cfg.Assets.Dir), &s.cfg.Assets.Loader, s.logger,
		render.WithAssetRecorder(s.assets))
	images, err := loader.Load(ctx, render.SnapshotKeys(s.store.Current()))
	if err != nil {
		return nil, err
	}

	painter := render.NewPainter(images, render.WithPainterLogger(s.logger))
	board := render.NewBoard(loc, images, render.WithOnRender(func(key string, ops []render.DrawOp) {
		path := filepath.Join(dir, tileFile(key))
		if err := writePNG(path, painter.Canvas(ops)); err != nil {
			s.logger.Error("failed to write tile", "key", key, "error", err)
		}
	}))
	painted := board.Sync(s.store.Current())
	s.logger.Info("records painted", "count", len(painted), "dir", dir)

	if !s.opts.watch {
		return func() {}, nil
	}
	return board.Bind(s.store), nil
}

func tileFile(key string) string {
	return strings.ReplaceAll(key, "/", "_") + ".png"
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
