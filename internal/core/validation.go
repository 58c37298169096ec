package core

// validation.go provides request-level validation before the store is touched.
//
// Only presence is checked: a field that is absent from the payload fails,
// while an empty string is accepted. Upload validation checks that a file
// was attached and that its name carries the .csv extension.

import (
	"fmt"
	"strings"
)

// ValidationError reports missing or invalid required input.
type ValidationError struct {
	Field   string // Field or form value name, empty for request-level problems
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}

// InternalError wraps an unexpected failure during a batch mutation.
// Error returns the underlying message verbatim.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// missingField builds the error returned when a required field is absent.
func missingField(name string) *ValidationError {
	return &ValidationError{Field: name, Message: "missing required field"}
}

// validateCreate checks that both required fields were sent.
func validateCreate(req CreateRequest) error {
	if req.Name == nil {
		return missingField("name")
	}
	if req.Email == nil {
		return missingField("email")
	}
	return nil
}

// validateUpload checks that a CSV file was attached.
func validateUpload(up *Upload) error {
	if up == nil {
		return &ValidationError{Field: "file", Message: "no file selected"}
	}
	if up.FileName == "" {
		return &ValidationError{Field: "file", Message: "file name is empty"}
	}
	if !strings.HasSuffix(up.FileName, ".csv") {
		return &ValidationError{Field: "file", Message: "only .csv files can be imported"}
	}
	return nil
}
