package web

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
)

// handleIndex renders the single page UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	templ.Handler(indexPage(pageSettings{
		PerPage:     s.cfg.Query.DefaultPerPage,
		MaxFileSize: s.cfg.Import.MaxFileSize,
	})).ServeHTTP(w, r)
}

// handleHealthz reports whether the store is reachable.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
