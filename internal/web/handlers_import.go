package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/roster/internal/core"
)

// multipartOverhead leaves room for the form boundaries around the file.
const multipartOverhead = 1 << 20

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ImportID string `json:"import_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// handleImportData imports the CSV file posted in the "file" form field.
func (s *Server) handleImportData(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large", "VAL002")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			respondError(w, r, &core.ValidationError{Field: "file", Message: "invalid multipart form"})
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	upload, err := readUpload(r, maxSize)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large", "VAL002")
			return
		}
		respondError(w, r, err)
		return
	}

	result, err := s.service.ImportCSV(r.Context(), upload)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Status:   "success",
		Message:  fmt.Sprintf("imported %d records", result.Inserted),
		ImportID: result.ImportID,
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
	})
}

var errFileTooLarge = errors.New("file too large")

// readUpload returns the posted file, or nil when none was attached so the
// service reports the missing file.
func readUpload(r *http.Request, maxSize int64) (*core.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.ValidationError{Field: "file", Message: "cannot read uploaded file"}
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, errFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, &core.ValidationError{Field: "file", Message: "cannot read uploaded file"}
	}
	if int64(len(data)) > maxSize {
		return nil, errFileTooLarge
	}
	return &core.Upload{FileName: header.Filename, Data: data}, nil
}
