package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/config"
	"github.com/patrickwarner/chatads/internal/db"
	"github.com/patrickwarner/chatads/internal/decision"
	"github.com/patrickwarner/chatads/internal/language"
	"github.com/patrickwarner/chatads/internal/logic/selectors"
	"github.com/patrickwarner/chatads/internal/models"
	"github.com/patrickwarner/chatads/internal/translate"
)

const version = "1.0.0"

func main() {
	// stdout carries the MCP stream, so logs go to stderr
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.MessageKey = "msg"

	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("chatads-mcp").With(zap.String("service", "chatads-mcp"))
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(logger, config.Load()); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.InitPostgres(ctx, cfg.PostgresDSN, db.PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ConnectRetries:  cfg.DBConnectRetries,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	catalog := models.NewCatalog()
	n, err := db.ReloadCatalog(ctx, pg, catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("active_ads", n))

	backend, err := translate.NewBackend(cfg)
	if err != nil {
		return fmt.Errorf("translator: %w", err)
	}
	engine := decision.NewEngine(decision.Options{
		Candidates:   catalog,
		Advertisers:  catalog,
		History:      pg,
		Detector:     language.New(cfg.LanguageDetector),
		Translator:   translate.NewAdapter(backend, cfg.TranslateTimeout, logger, nil),
		Selector:     selectors.NewMaxScore(selectors.RandomPicker{}),
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger,
	})

	server := newMCPServer(&ToolServer{engine: engine, catalog: catalog, logger: logger}, version)

	var logBuffer bytes.Buffer
	transport := &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: &logBuffer}

	logger.Info("MCP server running via stdio")
	if err := server.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w (transport log: %s)", err, logBuffer.String())
	}
	return nil
}
