package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/patrickwarner/chatads/internal/auth"
)

// RegisterRoutes mounts the SDK, admin and health endpoints on r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.instrument("health", s.HealthHandler)).Methods(http.MethodGet)

	r.HandleFunc("/api/requests", s.instrument("requests", s.RequestsHandler)).Methods(http.MethodPost)
	r.HandleFunc("/api/ads/static", s.instrument("ads_static", s.StaticAdHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/events", s.instrument("events", s.EventsHandler)).Methods(http.MethodPost)

	admin := r.PathPrefix("/api/admin").Subrouter()
	read := s.Auth.Require(auth.RoleViewer, adminAuthError)
	write := s.Auth.Require(auth.RoleEditor, adminAuthError)
	super := s.Auth.Require(auth.RoleAdmin, adminAuthError)
	handle := func(path, method, endpoint string, gate func(http.Handler) http.Handler, h http.HandlerFunc) {
		admin.Handle(path, s.instrument(endpoint, gate(h).ServeHTTP)).Methods(method)
	}

	handle("/advertisers", http.MethodGet, "admin_advertisers", read, s.ListAdvertisers)
	handle("/advertisers", http.MethodPost, "admin_advertisers", write, s.CreateAdvertiser)
	handle("/advertisers/{id}", http.MethodGet, "admin_advertiser", read, s.GetAdvertiser)
	handle("/advertisers/{id}", http.MethodPatch, "admin_advertiser", write, s.UpdateAdvertiser)

	handle("/ads", http.MethodGet, "admin_ads", read, s.ListAds)
	handle("/ads", http.MethodPost, "admin_ads", write, s.CreateAd)
	handle("/ads/{id}", http.MethodGet, "admin_ad", read, s.GetAd)
	handle("/ads/{id}", http.MethodPatch, "admin_ad", write, s.UpdateAd)
	handle("/ads/{id}/duplicate", http.MethodPost, "admin_ad_duplicate", write, s.DuplicateAd)

	handle("/requests/{id}/events", http.MethodGet, "admin_request_events", read, s.RequestEventsHandler)
	handle("/ratelimit", http.MethodGet, "admin_ratelimit", read, s.RateLimitStatsHandler)
	handle("/reload", http.MethodPost, "reload", super, s.ReloadHandler)
}
