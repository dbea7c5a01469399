package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/middleware"
)

// ReloadHandler rebuilds the serving catalog from Postgres.
func (s *Server) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	if err := s.Reload(r.Context()); err != nil {
		logger.Error("reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
