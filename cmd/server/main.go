package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/analytics"
	"github.com/patrickwarner/chatads/internal/api"
	"github.com/patrickwarner/chatads/internal/config"
	"github.com/patrickwarner/chatads/internal/db"
	"github.com/patrickwarner/chatads/internal/decision"
	"github.com/patrickwarner/chatads/internal/geoip"
	"github.com/patrickwarner/chatads/internal/language"
	"github.com/patrickwarner/chatads/internal/logic/selectors"
	"github.com/patrickwarner/chatads/internal/middleware"
	"github.com/patrickwarner/chatads/internal/models"
	"github.com/patrickwarner/chatads/internal/observability"
	"github.com/patrickwarner/chatads/internal/ratelimit"
	"github.com/patrickwarner/chatads/internal/translate"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.InitLogger(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Env,
			Endpoint:    cfg.TracingEndpoint,
			SampleRate:  cfg.TracingSampleRate,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	pg, err := db.InitPostgres(ctx, cfg.PostgresDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ConnectRetries:  cfg.DBConnectRetries,
	})
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	store, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer store.Close()

	metricsRegistry := observability.NewPrometheusRegistry()

	// analytics is optional; decisions are still logged to postgres
	var analyticsSvc *analytics.Analytics
	if cfg.ClickHouseDSN != "" {
		analyticsSvc, err = analytics.InitClickHouse(cfg.ClickHouseDSN)
		if err != nil {
			logger.Warn("clickhouse unavailable, analytics disabled", zap.Error(err))
			analyticsSvc = nil
		} else {
			defer analyticsSvc.Close()
		}
	}

	var geoSvc *geoip.GeoIP
	if cfg.InferTargeting {
		geoSvc, err = geoip.Open(cfg.GeoIPDB)
		if err != nil {
			return fmt.Errorf("failed to load geoip db: %w", err)
		}
		defer func() { _ = geoSvc.Close() }()
	}

	backend, err := translate.NewBackend(cfg)
	if err != nil {
		return fmt.Errorf("translator: %w", err)
	}
	translator := translate.NewAdapter(backend, cfg.TranslateTimeout, logger, metricsRegistry)

	var (
		history      decision.HistorySource = pg
		redisHistory *db.RedisHistory
	)
	if cfg.HistoryBackend == "redis" {
		redisHistory = db.NewRedisHistory(store.Client, cfg.HistoryLimit)
		history = redisHistory
	}

	catalog := models.NewCatalog()
	engine := decision.NewEngine(decision.Options{
		Candidates:   catalog,
		Advertisers:  catalog,
		History:      history,
		Detector:     language.New(cfg.LanguageDetector),
		Translator:   translator,
		Selector:     selectors.NewMaxScore(selectors.RandomPicker{}),
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger,
		Metrics:      metricsRegistry,
	})

	srv := api.NewServer(logger, engine, pg, catalog, metricsRegistry, cfg)
	srv.Redis = store
	srv.GeoIP = geoSvc
	srv.Limiter = ratelimit.NewAppLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
		MaxBuckets: cfg.RateLimitMaxApps,
		IdleTTL:    cfg.RateLimitIdleTTL,
	}, metricsRegistry)
	if redisHistory != nil {
		srv.History = redisHistory
	}
	if analyticsSvc != nil {
		srv.Analytics = analyticsSvc
		srv.Events = analyticsSvc
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set, admin API disabled")
	}

	if err := srv.Reload(ctx); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("active_ads", catalog.Len()))

	r := mux.NewRouter()
	srv.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Use(middleware.WithTraceLogger(logger))

	addr := ":" + cfg.Port
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "chatads"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Ad server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	go func() {
		if err := store.SubscribeCatalogUpdates(ctx, srv.HandleCatalogUpdate(ctx)); err != nil && ctx.Err() == nil {
			logger.Error("catalog update subscription", zap.Error(err))
		}
	}()

	if cfg.CatalogReloadInterval > 0 {
		ticker := time.NewTicker(cfg.CatalogReloadInterval)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := srv.Reload(ctx); err != nil {
						logger.Error("auto reload", zap.Error(err))
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
