package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/config"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/controller"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/metrics"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/store"
	"github.com/lk2023060901/xdooria-editor/pkg/app"
	"github.com/lk2023060901/xdooria-editor/pkg/logger"
	"github.com/lk2023060901/xdooria-editor/pkg/prometheus"
)

var (
	configPath = pflag.StringP("config", "c", "", "配置文件路径（YAML），为空时只使用环境变量与默认值")
	savePath   = pflag.StringP("save", "s", "", "要打开的存档路径")
	location   = pflag.String("location", "inventory", "列出的位置：inventory / storage")
	category   = pflag.String("category", "", "只列出该分类，例如 Consumable、RightHand、Gem")
	keyword    = pflag.String("search", "", "按名称筛选")
	paintDir   = pflag.String("paint-dir", "", "把每条记录绘制为 PNG 写入该目录")
	writePath  = pflag.String("write", "", "完成后把存档写到该路径")
	fixIsz     = pflag.Bool("fix-isz", false, "修复 isz 异常")
	watch      = pflag.Bool("watch", false, "保持运行：重绘变化的记录并热更新数量上限")
)

func main() {
	pflag.Parse()
	if *savePath == "" {
		fmt.Fprintln(os.Stderr, "--save is required")
		pflag.Usage()
		os.Exit(2)
	}

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}
	logger.SetDefault(l)

	application := app.NewBaseApp(
		app.WithName("editor"),
		app.WithLogger(l),
		app.WithKeepAlive(*watch),
	)

	// 3. 指标
	em, err := metrics.New(&cfg.Metrics)
	if err != nil {
		l.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}
	exporter, err := prometheus.New(&prometheus.Config{Listen: cfg.Metrics.Listen, Runtime: true}, l)
	if err != nil {
		l.Error("failed to create metrics exporter", "error", err)
		os.Exit(1)
	}
	if err := em.Register(exporter.Registry()); err != nil {
		l.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}
	application.AppendServer(exporter)

	// 4. 后端连接
	codec, err := cfg.Codec()
	if err != nil {
		l.Error("failed to select codec", "error", err)
		os.Exit(1)
	}
	transport, err := gateway.NewWSTransport(&cfg.Gateway.WS, codec, l)
	if err != nil {
		l.Error("failed to create transport", "error", err)
		os.Exit(1)
	}
	application.AppendCloser(transport)

	// 5. store / 网关 / 控制器
	st := store.New(store.WithLogger(l), store.WithRecorder(em))
	g, err := gateway.New(transport,
		gateway.WithLogger(l),
		gateway.WithTracker(st),
		gateway.WithRecorder(em),
		gateway.WithCallTimeout(cfg.Gateway.CallTimeout),
	)
	if err != nil {
		l.Error("failed to create gateway", "error", err)
		os.Exit(1)
	}
	ctrl, err := controller.New(g, st, controller.WithLogger(l), controller.WithQuantity(&cfg.Quantity))
	if err != nil {
		l.Error("failed to create controller", "error", err)
		os.Exit(1)
	}

	// 6. 配置热更新（仅 --watch 且指定了配置文件）
	if *watch && *configPath != "" {
		w, err := config.Watch(*configPath, func(err error) {
			l.Warn("config reload rejected", "error", err)
		})
		if err != nil {
			l.Warn("config watch disabled", "error", err)
		} else {
			w.OnChange(func(next *config.Config) {
				ctrl.SetQuantity(&next.Quantity)
				l.Info("quantity caps reloaded",
					"default_cap", next.Quantity.DefaultCap,
					"storage_cap", next.Quantity.StorageCap,
				)
			})
		}
	}

	// 7. 主流程
	s := &session{
		cfg:        cfg,
		logger:     l.Named("session"),
		transport:  transport,
		controller: ctrl,
		store:      st,
		assets:     em,
		opts: sessionOptions{
			save:     *savePath,
			location: *location,
			category: *category,
			keyword:  *keyword,
			paintDir: *paintDir,
			write:    *writePath,
			fixIsz:   *fixIsz,
			watch:    *watch,
		},
		out: os.Stdout,
	}
	application.AppendTask(func(ctx context.Context) error {
		return s.run(ctx)
	})

	if err := application.Run(); err != nil {
		l.Error("editor exited with error", "error", err)
		os.Exit(1)
	}
}
