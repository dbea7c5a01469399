package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/middleware"
	"github.com/patrickwarner/chatads/internal/models"
)

// ListAdvertisers handles GET /api/admin/advertisers.
func (s *Server) ListAdvertisers(w http.ResponseWriter, r *http.Request) {
	limit, err := pageLimit(r)
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}
	q := r.URL.Query()
	params := models.ListAdvertisersParams{
		Q:      q.Get("q"),
		Status: models.AdvertiserStatus(q.Get("status")),
		Limit:  limit,
		Cursor: q.Get("cursor"),
	}
	if err := params.Validate(); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	page, err := s.Store.ListAdvertisers(r.Context(), params)
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateAdvertiser handles POST /api/admin/advertisers.
func (s *Server) CreateAdvertiser(w http.ResponseWriter, r *http.Request) {
	var in models.CreateAdvertiserInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	actor := actorFrom(r)
	adv, err := s.Store.CreateAdvertiser(r.Context(), models.Advertiser{
		Name:       in.Name,
		Status:     in.Status,
		WebsiteURL: in.WebsiteURL,
		Meta:       models.Meta{CreatedBy: actorName(actor), UpdatedBy: actorName(actor)},
	})
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}

	s.audit(r.Context(), actor, models.AuditAdvertiserCreate, models.AuditEntityAdvertiser, adv.ID, nil, adv)
	s.notifyUpdate(r.Context(), "advertiser", "create", adv.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": adv.ID})
}

// GetAdvertiser handles GET /api/admin/advertisers/{id}.
func (s *Server) GetAdvertiser(w http.ResponseWriter, r *http.Request) {
	adv, err := s.Store.GetAdvertiser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err, "Advertiser")
		return
	}
	writeJSON(w, http.StatusOK, adv)
}

// UpdateAdvertiser handles PATCH /api/admin/advertisers/{id}. Suspending an
// advertiser pauses all of its active ads.
func (s *Server) UpdateAdvertiser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	existing, err := s.Store.GetAdvertiser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err, "Advertiser")
		return
	}
	var in models.UpdateAdvertiserInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		s.writeInputError(w, r, err)
		return
	}

	actor := actorFrom(r)
	updated := existing
	in.Apply(&updated)
	updated.Meta.UpdatedBy = actorName(actor)
	updated, err = s.Store.UpdateAdvertiser(r.Context(), updated)
	if err != nil {
		s.writeStoreError(w, r, err, "Advertiser")
		return
	}

	action := models.AuditAdvertiserUpdate
	if in.Suspends() {
		action = models.AuditAdvertiserSuspend
		paused, err := s.Store.PauseActiveAds(r.Context(), existing.ID, actorName(actor))
		if err != nil {
			s.writeStoreError(w, r, err, "")
			return
		}
		logger.Info("advertiser suspended", zap.String("advertiser_id", existing.ID), zap.Int("paused_ads", len(paused)))
	}

	s.audit(r.Context(), actor, action, models.AuditEntityAdvertiser, existing.ID, existing, updated)
	s.notifyUpdate(r.Context(), "advertiser", "update", existing.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
