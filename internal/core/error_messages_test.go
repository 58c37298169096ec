package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
		wantStatus  int
	}{
		{
			name: "nil error returns empty",
			err:  nil,
		},
		{
			name:        "missing field",
			err:         missingField("email"),
			wantCode:    "VAL001",
			wantMessage: "email: missing required field",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "request level validation",
			err:         &ValidationError{Message: "invalid JSON body"},
			wantCode:    "VAL001",
			wantMessage: "invalid JSON body",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "file validation",
			err:         &ValidationError{Field: "file", Message: "no file selected"},
			wantCode:    "VAL002",
			wantMessage: "file: no file selected",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "sort validation",
			err:         &ValidationError{Field: "sort_by", Message: "unsupported"},
			wantCode:    "VAL003",
			wantMessage: "sort_by: unsupported",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "wrapped validation",
			err:         fmt.Errorf("handler: %w", missingField("id")),
			wantCode:    "VAL001",
			wantMessage: "id: missing required field",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "not found",
			err:         &NotFoundError{ID: 42},
			wantCode:    "REC001",
			wantMessage: "record not found",
			wantStatus:  http.StatusNotFound,
		},
		{
			name:        "internal error keeps message",
			err:         &InternalError{Op: "batch delete", Err: errors.New("database is locked")},
			wantCode:    "ERR500",
			wantMessage: "database is locked",
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name:        "imports busy",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: ErrTooManyImports.Error(),
			wantStatus:  http.StatusServiceUnavailable,
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("pq: relation \"records\" does not exist"),
			wantCode:    "ERR000",
			wantMessage: "an unexpected error occurred",
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("MapError() status = %d, want %d", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(nil); got != http.StatusOK {
		t.Errorf("StatusCode(nil) = %d, want 200", got)
	}
	if got := StatusCode(&NotFoundError{ID: 1}); got != http.StatusNotFound {
		t.Errorf("StatusCode(NotFoundError) = %d, want 404", got)
	}
}

func TestInternalErrorMessage(t *testing.T) {
	cause := errors.New("boom")
	err := &InternalError{Op: "batch delete", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("InternalError should unwrap to its cause")
	}
	if got := (&InternalError{Op: "batch delete"}).Error(); got != "batch delete failed" {
		t.Errorf("Error() = %q", got)
	}
}
