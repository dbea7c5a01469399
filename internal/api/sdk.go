package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/analytics"
	"github.com/patrickwarner/chatads/internal/decision"
	"github.com/patrickwarner/chatads/internal/logic"
	"github.com/patrickwarner/chatads/internal/middleware"
	"github.com/patrickwarner/chatads/internal/models"
)

// decisionResponse is the SDK response of both decision endpoints.
// RequestID is null when no request was logged.
type decisionResponse struct {
	OK        bool               `json:"ok"`
	RequestID *string            `json:"requestId"`
	Ad        *models.ResolvedAd `json:"ad"`
	Error     string             `json:"error,omitempty"`
}

func failedDecision(msg string) decisionResponse {
	return decisionResponse{Error: msg}
}

// RequestsHandler handles POST /api/requests, the conversational decision.
func (s *Server) RequestsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := middleware.LoggerFromRequest(r, s.Logger)
	ctx, span := tracer.Start(r.Context(), "RequestsHandler")
	defer span.End()

	var in models.DecisionInput
	if err := readJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, failedDecision(err.Error()))
		return
	}
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, failedDecision(err.Error()))
		return
	}
	if !s.Limiter.Allow(in.AppID) {
		writeJSON(w, http.StatusTooManyRequests, failedDecision("rate limit exceeded"))
		return
	}
	span.SetAttributes(attribute.String("app.id", in.AppID))

	res, err := s.Engine.DecideByContext(ctx, in.ContextText, in.Formats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("context decision failed", zap.Error(err), zap.String("app_id", in.AppID))
		s.logRequest(ctx, logger, models.RequestRecord{
			Type:      models.RequestTypeContext,
			AppID:     in.AppID,
			UserID:    in.UserID,
			Status:    models.RequestError,
			Reason:    err.Error(),
			LatencyMs: time.Since(start).Milliseconds(),
		})
		writeJSON(w, http.StatusInternalServerError, decisionResponse{})
		return
	}

	rec := models.RequestRecord{
		ID:             uuid.NewString(),
		Type:           models.RequestTypeContext,
		AppID:          in.AppID,
		ConversationID: in.ConversationID,
		MessageID:      in.MessageID,
		ContextText:    in.ContextText,
		Language:       res.Language,
		Status:         requestStatus(res.Ad),
		Reason:         res.Reason,
		LatencyMs:      time.Since(start).Milliseconds(),
		SDKVersion:     in.SDKVersion,
		UserID:         in.UserID,
	}
	if res.Ad != nil {
		rec.DecidedAdID = res.Ad.ID
	}
	s.logRequest(ctx, logger, rec)

	if res.Ad != nil && s.History != nil && in.UserID != "" {
		if err := s.History.Record(ctx, in.UserID, in.ContextText); err != nil {
			logger.Warn("record history", zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Bool("ad.served", res.Ad != nil), attribute.String("ad.language", string(res.Language)))
	writeJSON(w, http.StatusOK, decisionResponse{OK: res.Ad != nil, RequestID: &rec.ID, Ad: res.Ad})
}

// StaticAdHandler handles GET /api/ads/static, the page-load decision.
func (s *Server) StaticAdHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := middleware.LoggerFromRequest(r, s.Logger)
	ctx, span := tracer.Start(r.Context(), "StaticAdHandler")
	defer span.End()

	q := parseStaticQuery(r)
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, failedDecision(err.Error()))
		return
	}
	if !s.Limiter.Allow(q.PublisherID) {
		writeJSON(w, http.StatusTooManyRequests, failedDecision("rate limit exceeded"))
		return
	}

	deviceType, geo := q.DeviceType, q.Geo
	if s.Config.InferTargeting {
		deviceType, geo = logic.InferTargeting(r, s.GeoIP, deviceType, geo)
	}
	targeting := &models.RequestTargeting{Language: string(q.Language), DeviceType: deviceType, Geo: geo}

	res, err := s.Engine.DecideStatic(ctx, decision.StaticRequest{
		UserID:      q.UserID,
		PublisherID: q.PublisherID,
		Language:    q.Language,
		DeviceType:  deviceType,
		Geo:         geo,
		Formats:     q.Formats,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("static decision failed", zap.Error(err), zap.String("publisher_id", q.PublisherID))
		s.logRequest(ctx, logger, models.RequestRecord{
			Type:      models.RequestTypeStatic,
			AppID:     q.PublisherID,
			UserID:    q.UserID,
			Status:    models.RequestError,
			Reason:    err.Error(),
			LatencyMs: time.Since(start).Milliseconds(),
			Targeting: targeting,
		})
		writeJSON(w, http.StatusInternalServerError, decisionResponse{})
		return
	}

	rec := models.RequestRecord{
		ID:        uuid.NewString(),
		Type:      models.RequestTypeStatic,
		AppID:     q.PublisherID,
		UserID:    q.UserID,
		Status:    requestStatus(res.Ad),
		Reason:    res.Reason,
		LatencyMs: time.Since(start).Milliseconds(),
		Targeting: targeting,
	}
	if res.Ad != nil {
		rec.DecidedAdID = res.Ad.ID
	}
	s.logRequest(ctx, logger, rec)

	span.SetAttributes(attribute.Bool("ad.served", res.Ad != nil), attribute.Int("user.interests", len(res.Interests)))
	w.Header().Set("Cache-Control", "private, max-age=60")
	writeJSON(w, http.StatusOK, decisionResponse{OK: res.Ad != nil, RequestID: &rec.ID, Ad: res.Ad})
}

func parseStaticQuery(r *http.Request) models.StaticQuery {
	v := r.URL.Query()
	q := models.StaticQuery{
		UserID:      v.Get("userId"),
		PublisherID: v.Get("publisherId"),
		Language:    models.Language(v.Get("language")),
		DeviceType:  v.Get("deviceType"),
		Geo:         v.Get("geo"),
	}
	q.Formats = parseFormats(v.Get("formats"))
	return q
}

// parseFormats splits a comma separated format list, skipping blanks.
func parseFormats(raw string) []models.Format {
	var out []models.Format
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, models.Format(f))
		}
	}
	return out
}

func requestStatus(ad *models.ResolvedAd) models.RequestStatus {
	if ad != nil {
		return models.RequestSuccess
	}
	return models.RequestNoAd
}

// logRequest persists the request record and mirrors it to analytics.
// Failures are logged and otherwise ignored.
func (s *Server) logRequest(ctx context.Context, logger *zap.Logger, rec models.RequestRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	ctx = context.WithoutCancel(ctx)
	if s.Store != nil {
		if err := s.Store.InsertRequest(ctx, rec); err != nil {
			logger.Error("insert request log", zap.Error(err), zap.String("request_id", rec.ID))
		}
	}
	if s.Analytics != nil {
		if err := s.Analytics.RecordDecision(ctx, rec); err != nil && !errors.Is(err, analytics.ErrUnavailable) {
			logger.Warn("analytics decision", zap.Error(err))
		}
	}
}

type eventResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId"`
	Error   string `json:"error,omitempty"`
}

// EventsHandler handles POST /api/events.
func (s *Server) EventsHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	ctx, span := tracer.Start(r.Context(), "EventsHandler")
	defer span.End()

	var in models.EventInput
	if err := readJSON(w, r, &in); err != nil {
		s.Metrics.IncrementEvent("bad_event")
		writeJSON(w, http.StatusBadRequest, eventResponse{Error: err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		s.Metrics.IncrementEvent("bad_event")
		writeJSON(w, http.StatusBadRequest, eventResponse{Error: err.Error()})
		return
	}

	ev, err := s.Store.InsertEvent(ctx, in.ToEvent())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("insert event", zap.Error(err), zap.String("type", string(in.Type)))
		writeJSON(w, http.StatusInternalServerError, eventResponse{})
		return
	}
	s.Metrics.IncrementEvent(string(ev.Type))

	if s.Analytics != nil {
		if err := s.Analytics.RecordEvent(context.WithoutCancel(ctx), ev); err != nil && !errors.Is(err, analytics.ErrUnavailable) {
			logger.Warn("analytics event", zap.Error(err), zap.String("event_id", ev.ID))
		}
	}

	span.SetAttributes(attribute.String("event.type", string(ev.Type)), attribute.String("ad.id", ev.AdID))
	writeJSON(w, http.StatusCreated, eventResponse{Success: true, EventID: ev.ID})
}
