package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/patrickwarner/chatads/internal/models"
)

// ListAds handles GET /api/admin/ads.
func (s *Server) ListAds(w http.ResponseWriter, r *http.Request) {
	limit, err := pageLimit(r)
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}
	q := r.URL.Query()
	params := models.ListAdsParams{
		Q:            q.Get("q"),
		Status:       models.AdStatus(q.Get("status")),
		AdvertiserID: q.Get("advertiserId"),
		Tag:          q.Get("tag"),
		Limit:        limit,
		Cursor:       q.Get("cursor"),
	}
	if err := params.Validate(); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	page, err := s.Store.ListAds(r.Context(), params)
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateAd handles POST /api/admin/ads. Ads created as active pass the
// publish gate first.
func (s *Server) CreateAd(w http.ResponseWriter, r *http.Request) {
	var in models.CreateAdInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	adv, err := s.Store.GetAdvertiser(r.Context(), in.AdvertiserID)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Advertiser not found")
		return
	}
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	ad, err := in.ToAd()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ad.Status == models.AdStatusActive {
		if err := checkPublishable(ad, adv); err != nil {
			writePublishError(w, err)
			return
		}
	}

	actor := actorFrom(r)
	ad.Meta = models.Meta{CreatedBy: actorName(actor), UpdatedBy: actorName(actor)}
	created, err := s.Store.CreateAd(r.Context(), ad)
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}

	s.audit(r.Context(), actor, models.AuditAdCreate, models.AuditEntityAd, created.ID, nil, created)
	s.notifyUpdate(r.Context(), "ad", "create", created.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

// GetAd handles GET /api/admin/ads/{id}.
func (s *Server) GetAd(w http.ResponseWriter, r *http.Request) {
	ad, err := s.Store.GetAd(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err, "Ad")
		return
	}
	name := models.UnknownAdvertiserName
	adv, err := s.Store.GetAdvertiser(r.Context(), ad.AdvertiserID)
	switch {
	case err == nil && adv.Name != "":
		name = adv.Name
	case err != nil && !errors.Is(err, models.ErrNotFound):
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, models.AdWithAdvertiser{Ad: ad, AdvertiserName: name})
}

// UpdateAd handles PATCH /api/admin/ads/{id}. Archived ads are read-only.
func (s *Server) UpdateAd(w http.ResponseWriter, r *http.Request) {
	existing, err := s.Store.GetAd(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err, "Ad")
		return
	}
	if existing.Status == models.AdStatusArchived {
		writeError(w, http.StatusBadRequest, "Cannot edit archived ads")
		return
	}
	var in models.UpdateAdInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		s.writeInputError(w, r, err)
		return
	}
	merged, err := in.Apply(existing)
	if err != nil {
		s.writeInputError(w, r, err)
		return
	}
	if in.Status != nil && *in.Status == models.AdStatusActive {
		adv, err := s.Store.GetAdvertiser(r.Context(), existing.AdvertiserID)
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Cannot publish ad: advertiser is suspended")
			return
		}
		if err != nil {
			s.writeStoreError(w, r, err, "")
			return
		}
		if err := checkPublishable(merged, adv); err != nil {
			writePublishError(w, err)
			return
		}
	}

	actor := actorFrom(r)
	merged.Meta.UpdatedBy = actorName(actor)
	updated, err := s.Store.UpdateAd(r.Context(), merged)
	if err != nil {
		s.writeStoreError(w, r, err, "Ad")
		return
	}

	action := models.AdUpdateAction(existing.Status, in.Status)
	s.audit(r.Context(), actor, action, models.AuditEntityAd, existing.ID, existing, updated)
	s.notifyUpdate(r.Context(), "ad", "update", existing.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DuplicateAd handles POST /api/admin/ads/{id}/duplicate. The copy starts paused.
func (s *Server) DuplicateAd(w http.ResponseWriter, r *http.Request) {
	existing, err := s.Store.GetAd(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err, "Ad")
		return
	}

	actor := actorFrom(r)
	dup := existing.Clone()
	dup.ID = ""
	dup.Status = models.AdStatusPaused
	dup.Meta = models.Meta{CreatedBy: actorName(actor), UpdatedBy: actorName(actor)}
	created, err := s.Store.CreateAd(r.Context(), dup)
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}

	s.audit(r.Context(), actor, models.AuditAdDuplicate, models.AuditEntityAd, created.ID, nil,
		map[string]string{"sourceAdId": existing.ID, "newAdId": created.ID})
	s.notifyUpdate(r.Context(), "ad", "create", created.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

// RequestEventsHandler handles GET /api/admin/requests/{id}/events.
func (s *Server) RequestEventsHandler(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics unavailable")
		return
	}
	events, err := s.Events.EventsByRequestID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": events})
}
