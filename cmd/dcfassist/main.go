package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dcfassist/internal/action"
	"dcfassist/internal/api"
	"dcfassist/internal/assistant"
	"dcfassist/internal/config"
	"dcfassist/internal/document"
	"dcfassist/internal/embedding"
	"dcfassist/internal/llm"
	"dcfassist/internal/logging"
	"dcfassist/internal/modelcheck"
	"dcfassist/internal/server"
	"dcfassist/internal/session"
)

var (
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	dataDir    = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	configPath = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	initConfig = flag.Bool("init-config", false, "写出默认配置后退出")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  DCF Assistant - model & action backend")
	fmt.Println("==========================================")

	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if *initConfig {
		if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
			log.Fatalf("write default config: %v", err)
		}
		fmt.Printf("Default config written to %s\n", path)
		return
	}

	// 加载配置
	cfg, info, err := config.LoadFile(path)
	if err != nil {
		log.Printf("load config failed, using defaults: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	// 确保数据目录存在
	if dir, err := config.EnsureDataDir(cfg); err != nil {
		logger.Warn("create data dir failed", "error", err)
	} else {
		logger.Info("data dir ready", "path", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := session.Open(ctx, cfg, logger.Logger)
	if err != nil {
		logger.Error("open session store failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	go session.RunSweeper(ctx, store, cfg.Session.SweepInterval.Duration, logger.Logger)

	handler := api.NewHandler(buildDeps(cfg, store, logger.Logger))
	srv := server.NewServer(cfg, handler, logger.Logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	scheme := "http"
	if srv.TLSEnabled() {
		scheme = "https"
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(addr)
	}()
	fmt.Printf("Listening on %s://localhost:%d\n", scheme, cfg.Server.Port)
	fmt.Println("\nPress Ctrl+C to stop...")

	// 等待信号
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildDeps 组装处理器依赖；没有 API key 时只提供不依赖模型的功能
func buildDeps(cfg *config.AppConfig, store session.Store, logger *slog.Logger) api.Deps {
	validator := action.NewValidator(action.Options{StrictRows: cfg.Validation.StrictRows}, logger)

	var (
		completer llm.Completer
		embedder  embedding.Embedder
	)
	if cfg.LLM.APIKey != "" {
		client := llm.NewClient(llm.Config{
			BaseURL:        cfg.LLM.BaseURL,
			APIKey:         cfg.LLM.APIKey,
			EmbeddingModel: cfg.LLM.EmbeddingModel,
			Timeout:        cfg.LLM.Timeout.Duration,
		})
		completer, embedder = client, client
	} else {
		logger.Warn("no LLM API key configured; generation, chat and summaries fall back to defaults")
	}

	asst := assistant.New(completer, embedder, validator, assistant.Config{
		ChatModel:    cfg.LLM.ChatModel,
		SummaryModel: cfg.LLM.SummaryModel,
		ChunkSize:    cfg.Embedding.ChunkSize,
		ChunkOverlap: cfg.Embedding.ChunkOverlap,
		TopK:         cfg.Embedding.TopK,
	}, logger)

	return api.Deps{
		Validator: validator,
		Assistant: asst,
		Checker:   modelcheck.NewChecker(completer, cfg.LLM.ChatModel, logger),
		Sessions:  store,
		Extractor: document.PDFExtractor{},
		Logger:    logger,
	}
}
