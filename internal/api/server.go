package api

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/analytics"
	"github.com/patrickwarner/chatads/internal/auth"
	"github.com/patrickwarner/chatads/internal/config"
	"github.com/patrickwarner/chatads/internal/db"
	"github.com/patrickwarner/chatads/internal/decision"
	"github.com/patrickwarner/chatads/internal/geoip"
	"github.com/patrickwarner/chatads/internal/models"
	"github.com/patrickwarner/chatads/internal/observability"
	"github.com/patrickwarner/chatads/internal/ratelimit"
)

var tracer = otel.Tracer("chatads/api")

// Store is the persistence the handlers need. *db.Postgres implements it.
type Store interface {
	db.CatalogSource

	CreateAdvertiser(ctx context.Context, adv models.Advertiser) (models.Advertiser, error)
	GetAdvertiser(ctx context.Context, id string) (models.Advertiser, error)
	UpdateAdvertiser(ctx context.Context, adv models.Advertiser) (models.Advertiser, error)
	ListAdvertisers(ctx context.Context, params models.ListAdvertisersParams) (models.Page[models.Advertiser], error)

	CreateAd(ctx context.Context, ad models.Ad) (models.Ad, error)
	GetAd(ctx context.Context, id string) (models.Ad, error)
	UpdateAd(ctx context.Context, ad models.Ad) (models.Ad, error)
	ListAds(ctx context.Context, params models.ListAdsParams) (models.Page[models.AdWithAdvertiser], error)
	PauseActiveAds(ctx context.Context, advertiserID, actor string) ([]string, error)

	InsertRequest(ctx context.Context, rec models.RequestRecord) error
	InsertEvent(ctx context.Context, ev models.Event) (models.Event, error)
	InsertAudit(ctx context.Context, entry models.AuditLog) error
}

var _ Store = (*db.Postgres)(nil)

// HistoryRecorder stores successful context texts for the static path.
type HistoryRecorder interface {
	Record(ctx context.Context, userID, contextText string) error
}

// EventReader looks up analytics events of a decision.
type EventReader interface {
	EventsByRequestID(ctx context.Context, requestID string) ([]analytics.EventRecord, error)
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Engine    *decision.Engine
	Store     Store
	Catalog   *models.Catalog
	Redis     *db.RedisStore
	History   HistoryRecorder // nil unless history is kept in Redis
	Analytics analytics.Service
	Events    EventReader
	Limiter   *ratelimit.AppLimiter
	GeoIP     *geoip.GeoIP
	Auth      *auth.Authenticator
	Metrics   observability.MetricsRegistry
	Config    config.Config
	reloadMu  sync.Mutex
}

// NewServer constructs a Server. Optional collaborators may be set on the
// returned value.
func NewServer(logger *zap.Logger, engine *decision.Engine, store Store, catalog *models.Catalog, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:  logger,
		Engine:  engine,
		Store:   store,
		Catalog: catalog,
		Limiter: ratelimit.NewAppLimiter(ratelimit.Config{}, metrics),
		Auth:    auth.NewAuthenticator(cfg.AdminJWTSecret),
		Metrics: metrics,
		Config:  cfg,
	}
}

// notifyUpdate tells every instance the catalog changed. Without Redis the
// local snapshot is reloaded in place.
func (s *Server) notifyUpdate(ctx context.Context, entity, action, id string) {
	if s.Redis == nil || s.Redis.Client == nil {
		if err := s.Reload(context.WithoutCancel(ctx)); err != nil {
			s.Logger.Error("catalog reload after update", zap.Error(err))
		}
		return
	}
	msg := db.UpdateMessage{Entity: entity, Action: action, ID: id}
	if err := s.Redis.PublishCatalogUpdate(context.WithoutCancel(ctx), msg); err != nil {
		s.Logger.Error("failed to publish update message", zap.Error(err))
	}
}

// Reload swaps in a fresh catalog snapshot from the store.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.Store == nil || s.Catalog == nil {
		return errors.New("catalog store unavailable")
	}
	n, err := db.ReloadCatalog(ctx, s.Store, s.Catalog)
	if err != nil {
		return err
	}
	s.Metrics.SetCatalogAds(n)
	return nil
}

// HandleCatalogUpdate is the Redis subscription callback.
func (s *Server) HandleCatalogUpdate(ctx context.Context) func(db.UpdateMessage) {
	return func(msg db.UpdateMessage) {
		if err := s.Reload(ctx); err != nil {
			s.Logger.Error("catalog reload", zap.Error(err), zap.String("entity", msg.Entity), zap.String("id", msg.ID))
			return
		}
		s.Logger.Debug("catalog reloaded", zap.String("entity", msg.Entity), zap.String("action", msg.Action), zap.String("id", msg.ID))
	}
}
