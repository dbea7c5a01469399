package api

import (
	"net/http"
)

// HealthHandler responds with a simple status check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ads := 0
	if s.Catalog != nil {
		ads = s.Catalog.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "catalogAds": ads})
}
