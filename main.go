package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/poke-hub/poke-hub/internal/cache"
	"github.com/poke-hub/poke-hub/internal/config"
	"github.com/poke-hub/poke-hub/internal/fetch"
	"github.com/poke-hub/poke-hub/internal/logging"
	"github.com/poke-hub/poke-hub/internal/proxy"
	"github.com/poke-hub/poke-hub/internal/server"
	"github.com/poke-hub/poke-hub/internal/server/routes"
	"github.com/poke-hub/poke-hub/internal/upstream"
	"github.com/poke-hub/poke-hub/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

const shutdownTimeout = 10 * time.Second

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["upstream"] = cfg.Upstream.BaseURL
		fields["cache_mode"] = cfg.CacheMode()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, memStore, err := buildApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建服务失败: %v\n", err)
		return 1
	}

	if memStore != nil {
		janitor := cache.NewJanitor(memStore, cfg.Cache.CleanupInterval.DurationValue(), logger)
		go janitor.Run(ctx)
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["upstream"] = cfg.Upstream.BaseURL
	fields["cache_mode"] = cfg.CacheMode()
	fields["cache_max_size"] = cfg.Cache.MaxSize
	fields["cache_expiration"] = cfg.Cache.Expiration.DurationValue().String()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := serve(ctx, app, cfg.Global.ListenPort, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildApp 按“缓存 → 上游客户端 → 协调器 → 处理器 → Fiber”的顺序组装服务，
// 所有请求共享同一个缓存与 singleflight 实例。缓存关闭时返回的 store 为 nil。
func buildApp(cfg *config.Config, logger *logrus.Logger) (*fiber.App, *cache.MemoryStore, error) {
	var (
		store    cache.Store
		memStore *cache.MemoryStore
	)
	if cfg.CacheEnabled() {
		created, err := cache.NewMemoryStore(cfg.Cache.MaxSize)
		if err != nil {
			return nil, nil, fmt.Errorf("初始化缓存失败: %w", err)
		}
		memStore = created
		store = created
	}

	client, err := upstream.NewClient(server.NewUpstreamClient(cfg), cfg.Upstream.BaseURL, upstream.Options{
		Timeout:   cfg.Upstream.Timeout.DurationValue(),
		UserAgent: cfg.Upstream.UserAgent,
	})
	if err != nil {
		return nil, nil, err
	}

	coordinator := fetch.NewCoordinator(store, client, cache.NewNormalizer(cfg.Upstream.StripPrefix), fetch.Options{
		TTL:          cfg.Cache.Expiration.DurationValue(),
		CacheEnabled: cfg.CacheEnabled(),
	})
	picker := proxy.NewRandomPicker(cfg.Random.Resource, cfg.Random.MinID, cfg.Random.MaxID)
	handler := proxy.NewHandler(proxy.NewEngine(coordinator), picker, logger)
	forwarder := proxy.NewForwarder(handler, logger)

	routeTable, err := server.NewRouteTable(cfg)
	if err != nil {
		return nil, nil, err
	}
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Routes:     routeTable,
		Proxy:      forwarder,
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		return nil, nil, err
	}
	routes.RegisterDiagnosticsRoutes(app, routes.DiagnosticsOptions{
		Config: cfg,
		Store:  store,
	})
	return app, memStore, nil
}

// serve 阻塞直到 Listen 失败或收到退出信号，收到信号后优雅关闭。
func serve(ctx context.Context, app *fiber.App, port int, logger *logrus.Logger) error {
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.WithField("action", "shutdown").Info("收到退出信号，开始关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("poke-hub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 POKE_HUB_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("POKE_HUB_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}
