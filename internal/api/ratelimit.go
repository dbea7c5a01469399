package api

import (
	"net/http"
	"sort"

	"github.com/patrickwarner/chatads/internal/ratelimit"
)

type rateLimitResponse struct {
	Items []ratelimit.Stats `json:"items"`
}

// RateLimitStatsHandler reports per-app limiter counters, sorted by app id.
func (s *Server) RateLimitStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.Limiter.Stats()
	items := make([]ratelimit.Stats, 0, len(stats))
	for _, st := range stats {
		items = append(items, st)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AppID < items[j].AppID })
	writeJSON(w, http.StatusOK, rateLimitResponse{Items: items})
}
