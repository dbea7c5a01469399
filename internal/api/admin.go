package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/auth"
	"github.com/patrickwarner/chatads/internal/middleware"
	"github.com/patrickwarner/chatads/internal/models"
)

// ErrPublishGate is returned when an ad may not go live.
var ErrPublishGate = errors.New("publish gate failed")

// adminAuthError maps authentication failures to 401/403.
func adminAuthError(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, auth.ErrForbidden) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	writeError(w, http.StatusUnauthorized, "Not authenticated")
}

// writeInputError answers 400 for validation failures and 500 otherwise.
func (s *Server) writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "Validation failed", ve.Messages...)
		return
	}
	s.writeStoreError(w, r, err, "")
}

// writeStoreError maps store failures; notFound names the entity for 404s.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if notFound != "" && errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound+" not found")
		return
	}
	middleware.LoggerFromRequest(r, s.Logger).Error("admin request failed", zap.Error(err), zap.String("path", r.URL.Path))
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func actorFrom(r *http.Request) auth.Actor {
	a, _ := auth.ActorFromContext(r.Context())
	return a
}

// actorName is the identity stamped into entity metadata.
func actorName(a auth.Actor) string {
	if a.Email != "" {
		return a.Email
	}
	return a.ID
}

// audit appends an audit entry. Failures are logged and do not undo the mutation.
func (s *Server) audit(ctx context.Context, actor auth.Actor, action models.AuditAction, entity models.AuditEntity, id string, before, after any) {
	entry := models.AuditLog{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		Before:     rawJSON(before),
		After:      rawJSON(after),
	}
	if err := s.Store.InsertAudit(context.WithoutCancel(ctx), entry); err != nil {
		s.Logger.Error("insert audit log", zap.Error(err), zap.String("action", string(action)), zap.String("entity_id", id))
	}
}

func rawJSON(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// pageLimit parses the limit query parameter; 0 means unset.
func pageLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Messages: []string{"limit must be a number"}}
	}
	return n, nil
}

// checkPublishable enforces the publish gate for an ad going live.
func checkPublishable(ad models.Ad, adv models.Advertiser) error {
	if adv.Status != models.AdvertiserActive {
		return &publishError{msg: "Cannot publish ad: advertiser is suspended"}
	}
	if err := models.CheckPublishGate(ad); err != nil {
		pe := &publishError{msg: "Publish gate failed"}
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			pe.details = ve.Messages
		}
		return pe
	}
	return nil
}

type publishError struct {
	msg     string
	details []string
}

func (e *publishError) Error() string { return e.msg }
func (e *publishError) Unwrap() error { return ErrPublishGate }

func writePublishError(w http.ResponseWriter, err error) {
	var pe *publishError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, pe.msg, pe.details...)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
