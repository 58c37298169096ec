package core

// error_messages.go maps domain errors to HTTP status codes and support codes.
//
// Error codes:
//
//	VAL001 - Missing field: a required field was absent from the request
//	VAL002 - Invalid file: the uploaded file is missing, misnamed or unreadable
//	VAL003 - Invalid parameter: a query parameter was rejected
//	REC001 - Not found: the referenced record does not exist
//	ERR500 - Internal: a batch mutation failed and was rolled back
//	IMP001 - Busy: every import slot stayed occupied, retry later
//	ERR000 - Unexpected: any other failure (check server logs)

import (
	"errors"
	"net/http"
)

// UserMessage contains a client-facing message and its support code.
type UserMessage struct {
	Message string
	Code    string
	Status  int
}

// MapError converts an error returned by Service into a UserMessage.
//
// Validation, not-found and internal errors carry their own message. Any
// other error is technical and is replaced by a generic message so store
// details do not leak to the client.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		code := "VAL001"
		switch ve.Field {
		case "file":
			code = "VAL002"
		case "sort_by":
			code = "VAL003"
		}
		return UserMessage{Message: ve.Error(), Code: code, Status: http.StatusBadRequest}
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return UserMessage{Message: "record not found", Code: "REC001", Status: http.StatusNotFound}
	}

	if errors.Is(err, ErrTooManyImports) {
		return UserMessage{Message: ErrTooManyImports.Error(), Code: "IMP001", Status: http.StatusServiceUnavailable}
	}

	var ie *InternalError
	if errors.As(err, &ie) {
		return UserMessage{Message: ie.Error(), Code: "ERR500", Status: http.StatusInternalServerError}
	}

	return UserMessage{
		Message: "an unexpected error occurred",
		Code:    "ERR000",
		Status:  http.StatusInternalServerError,
	}
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return MapError(err).Status
}
