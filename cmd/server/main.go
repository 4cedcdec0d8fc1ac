package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-backend/api/models/ws"
	"token-backend/api/routes"
	"token-backend/api/validate"
	"token-backend/config"
	"token-backend/db"
	"token-backend/internal/chain"
	"token-backend/internal/metrics"
	"token-backend/internal/ratelimit"
	"token-backend/internal/repo"
	"token-backend/internal/service"
	"token-backend/internal/stats"
	"token-backend/log"
	"token-backend/schedule/tasks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds the graceful shutdown of the http server.
const ShutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "token-backend",
		Usage: "HTTP backend for an ERC-20 token with a minter role",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultConfigPath, Usage: "Path of the toml config file"},
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP listen port"},
			&cli.StringFlag{Name: "rpc-url", Aliases: []string{"r"}, Usage: "JSON-RPC endpoint url"},
			&cli.StringFlag{Name: "ws-url", Usage: "Websocket endpoint url for log subscriptions"},
			&cli.StringFlag{Name: "token-address", Aliases: []string{"t"}, Usage: "Token contract address"},
			&cli.Int64Flag{Name: "chain-id", Usage: "Chain id"},
			&cli.BoolFlag{Name: "read-only", Usage: "Start without a signing key"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 配置优先级：命令行 > 环境变量 > 配置文件 > 默认值
func loadConfig(c *cli.Context) (*config.Conf, error) {
	conf, err := config.Init(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("port") {
		conf.Env.Port = c.String("port")
	}
	if c.IsSet("rpc-url") {
		conf.Chain.RpcEndpointUrl = c.String("rpc-url")
	}
	if c.IsSet("ws-url") {
		conf.Chain.WsUrl = c.String("ws-url")
	}
	if c.IsSet("token-address") {
		conf.Chain.TokenAddress = c.String("token-address")
	}
	if c.IsSet("chain-id") {
		conf.Chain.ChainId = c.Int64("chain-id")
	}
	if c.IsSet("read-only") {
		conf.Chain.ReadOnly = c.Bool("read-only")
	}
	if c.IsSet("development") {
		conf.Env.Development = c.Bool("development")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func run(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}

	// 1. 日志
	if err := log.Init(conf.Log, conf.Env.Development); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 注册验证器
	if err := validate.BindingValidator(); err != nil {
		return err
	}

	// 3. 链客户端：只读 client 与签名 signer 共用同一个节点连接
	backend, err := chain.Dial(ctx, conf.Chain.RpcEndpointUrl)
	if err != nil {
		return fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}
	defer backend.Close()

	var signer *chain.Signer
	if conf.Chain.ReadOnly {
		log.Logger.Warn("read-only mode, mint is disabled")
	} else {
		// 私钥只从环境变量读取
		signer, err = chain.NewSigner(conf.Chain.PrivateKey, big.NewInt(conf.Chain.ChainId))
		if err != nil {
			return err
		}
		log.Logger.Info("server wallet", zap.String("address", signer.Address().Hex()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 4. 存储层：未配置时使用内存实现
	var mints repo.MintStore = repo.NewMemoryMintStore()
	if conf.MysqlEnabled() {
		gdb, err := db.InitMysql(conf.Mysql)
		if err != nil {
			return err
		}
		defer db.CloseMysql()
		if err := repo.InitTable(gdb); err != nil {
			return fmt.Errorf("failed to migrate tables: %w", err)
		}
		mints = repo.NewGormMintStore(gdb)
	}

	var sessions repo.SessionStore = repo.NewMemorySessionStore()
	var cursor chain.Cursor = repo.NewMemoryCursor()
	if conf.RedisEnabled() {
		if _, err := db.InitRedis(conf.Redis); err != nil {
			return err
		}
		defer db.CloseRedis()
		sessions = repo.NewRedisSessionStore()
		cursor = repo.NewRedisCursor(conf.Chain.TokenAddress)
	}

	// 5. 业务层
	tokenService, err := service.NewTokenService(service.Options{
		ChainID:             conf.Chain.ChainId,
		Token:               common.HexToAddress(conf.Chain.TokenAddress),
		Backend:             backend,
		Signer:              signer,
		Mints:               mints,
		Metrics:             m,
		ReceiptPollInterval: time.Duration(conf.Chain.ReceiptPollInterval) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	// 6. mint 事件推送
	hub := ws.NewManager(m)
	defer hub.Close()
	var feed *service.MintFeed
	feedDone := make(chan struct{})
	if conf.Chain.FeedEnabled && conf.Chain.RpcEndpointUrl != "" {
		feed, err = service.NewMintFeed(hub, repo.NewEventStore(), stats.NewRecipients(), m)
		if err != nil {
			return err
		}
		go func() {
			defer close(feedDone)
			runFeed(ctx, conf.Chain, backend, cursor, feed)
		}()
	} else {
		close(feedDone)
	}

	// 7. 定时任务：服务钱包 gas 余额监控
	if signer != nil {
		monitor, err := service.NewBalanceMonitor(tokenService, conf.Threshold.MinGasBalance, conf.Email, m)
		if err != nil {
			return err
		}
		stopTasks := tasks.Task(tasks.Job{
			Name:            "BalanceMonitor",
			IntervalMinutes: conf.Monitor.IntervalMinutes,
			Run:             monitor.Monitor,
		})
		defer func() {
			stopTasks <- true
		}()
	}

	// 8. http 服务
	if !conf.Env.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	app := gin.Default()
	routes.InitRoute(app, routes.Deps{
		Conf:     conf,
		Token:    tokenService,
		Feed:     feed,
		Hub:      hub,
		Sessions: sessions,
		Limiter:  ratelimit.New(conf.Limit.MintRps, conf.Limit.MintBurst, 0),
		Metrics:  m,
	})

	server := &http.Server{
		Addr:              ":" + conf.Env.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			<-feedDone
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	stop()
	<-feedDone
	return nil
}

// runFeed 历史补扫 + 实时跟踪 Transfer(0x0 -> *) 日志。ws_url 配置时使用订阅，否则轮询。
func runFeed(ctx context.Context, conf config.ChainConfig, backend chain.Backend, cursor chain.Cursor, feed *service.MintFeed) {
	var sub chain.LogSubscriber
	if conf.WsUrl != "" {
		client, err := chain.MustDial(ctx, conf.WsUrl, 3*time.Second)
		if err != nil {
			return
		}
		defer client.Close()
		sub = client
	}

	w := chain.NewWatcher(chain.WatcherConfig{
		Address:      common.HexToAddress(conf.TokenAddress),
		Topics:       feed.Topics(),
		FromBlock:    conf.ScanFromBlock,
		BatchSize:    conf.ScanBatchSize,
		PollInterval: time.Duration(conf.ScanPollInterval) * time.Second,
	}, backend, sub, cursor)

	if err := feed.Run(ctx, w, conf.WorkerNum); err != nil && !errors.Is(err, context.Canceled) {
		log.Logger.Error("mint feed stopped", zap.Error(err))
	}
}
