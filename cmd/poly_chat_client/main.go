package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"poly_chat_client/internal/config"
	"poly_chat_client/internal/dao/storage"
	"poly_chat_client/internal/gateway/api"
	"poly_chat_client/internal/gateway/websocket"
	"poly_chat_client/internal/infrastructure/logger"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/internal/infrastructure/worker"
	"poly_chat_client/internal/service"
	"poly_chat_client/internal/service/client"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
)

func main() {
	configPath := flag.String("config", "", "path to config TOML (default: search configs/)")
	wallet := flag.String("wallet", "", "wallet address to log in with")
	flag.Parse()

	// 1. 加载配置
	conf := config.GetConfig()
	if *configPath != "" {
		c, err := config.LoadFrom(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		conf = c
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功", zap.String("server", conf.ServerURL))

	// 3. 初始化参数校验翻译器
	if err := validate.InitTrans(conf.Locale); err != nil {
		zap.L().Fatal("init validator failed", zap.Error(err))
	}

	// 4. 初始化本地存储，失败时不持久化身份
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	store, err := storage.Open(ctx, conf)
	cancel()
	var cache *storage.IdentityCache
	if err != nil {
		zap.L().Warn("storage unavailable, identity will not be persisted", zap.Error(err))
	} else {
		defer func() { _ = store.Close() }()
		cache = storage.NewIdentityCache(store)
	}

	// 5. 初始化 Worker Pool 和事件循环
	pool := worker.NewPool(conf.Workers, conf.Buffer)
	defer pool.Close()
	evLoop := loop.New(pool, conf.Buffer, conf.RequestTimeout())

	// 6. 组装客户端
	printer := projection.NewPrinter(os.Stdout)
	app := client.New(
		api.New(conf.ServerURL, conf.RequestTimeout()),
		websocket.NewDialer(conf.WebSocketURL(), conf.HandshakeTimeout()),
		evLoop,
		printer,
		cache,
		service.OptionsFrom(conf),
	)
	zap.L().Info("客户端初始化成功")

	// 7. 启动
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := evLoop.Run(runCtx); err != nil && err != context.Canceled {
			zap.L().Error("event loop exit", zap.Error(err))
		}
	}()
	app.Start()
	if *wallet != "" {
		app.Login(*wallet)
	} else {
		app.Restore()
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		readCommands(bufio.NewScanner(os.Stdin), app, os.Stdout)
	}()

	// 等待信号或输入结束
	select {
	case <-runCtx.Done():
	case <-quit:
	}

	zap.L().Info("关闭客户端...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 3*time.Second)
	if err := app.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("shutdown", zap.Error(err))
	}
	cancelShutdown()
	evLoop.Stop()
	fmt.Println("bye")
	zap.L().Info("客户端已关闭")
}
