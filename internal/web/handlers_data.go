package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/roster/internal/core"
)

// DataResponse is the body of a successful list request.
type DataResponse struct {
	Data    []core.Record `json:"data"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// handleGetData returns one page of records and the total match count.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.List(r.Context(), parseListParams(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{
		Data:    result.Items,
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	})
}

// handleExportData downloads the requested page as CSV. Only the page
// selected by the query parameters is exported, not the whole match set.
func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportCSV(r.Context(), parseListParams(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=%s", core.ExportFileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
