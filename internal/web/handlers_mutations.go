package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/roster/internal/core"
)

// StatusResponse is the body of a successful single-record mutation.
type StatusResponse struct {
	Status string `json:"status"`
	ID     *int64 `json:"id,omitempty"`
}

// handleAddData creates a record from {"name": ..., "email": ...}.
func (s *Server) handleAddData(w http.ResponseWriter, r *http.Request) {
	var p createPayload
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, err)
		return
	}

	id, err := s.service.Create(r.Context(), core.CreateRequest{Name: p.Name, Email: p.Email})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", ID: &id})
}

// handleUpdateData overwrites the fields present in the body.
func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	var p updatePayload
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, err)
		return
	}

	err := s.service.Update(r.Context(), core.UpdateRequest{
		ID:    p.ID.ptr(),
		Name:  p.Name,
		Email: p.Email,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// handleDeleteData removes a single record.
func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	var p deletePayload
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.Delete(r.Context(), core.DeleteRequest{ID: p.ID.ptr()}); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// handleBatchDelete removes every listed record in one transaction.
// Responses use the {"success": ..., "message": ...} envelope.
func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var p batchDeletePayload
	if err := decodeJSON(w, r, &p); err != nil {
		respondBatchError(w, r, err)
		return
	}

	deleted, err := s.service.BatchDelete(r.Context(), p.request())
	if err != nil {
		respondBatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{
		Success: true,
		Message: fmt.Sprintf("deleted %d records", deleted),
		Deleted: &deleted,
	})
}
