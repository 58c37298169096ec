package web

// handlers_common.go contains request parsing helpers shared by handlers.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/roster/internal/core"
)

// maxJSONBody bounds JSON request bodies. Batch delete payloads are the
// largest legitimate ones.
const maxJSONBody = 8 << 20

// parseIntParam parses an integer query parameter with a default value.
// Values that do not parse or are below 1 yield the default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseListParams reads the list and export query parameters.
// Page size 0 lets the service apply its configured default.
func parseListParams(r *http.Request) core.ListParams {
	q := r.URL.Query()
	return core.ListParams{
		Search:  q.Get("search"),
		SortBy:  q.Get("sort_by"),
		Order:   q.Get("order"),
		Page:    parseIntParam(r, "page", 1),
		PerPage: parseIntParam(r, "per_page", 0),
	}
}

// errInvalidJSON is reported for bodies that cannot be decoded.
var errInvalidJSON = &core.ValidationError{Message: "invalid JSON body"}

// decodeJSON decodes the request body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return errInvalidJSON
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

// recordID is an id in a JSON payload. The browser UI sends checkbox
// values, so a numeric string is accepted as well as a number.
type recordID int64

func (id *recordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return &core.ValidationError{Field: "id", Message: fmt.Sprintf("invalid id %s", b)}
	}
	*id = recordID(n)
	return nil
}

// ptr converts an optional recordID to the core representation.
func (id *recordID) ptr() *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

// Payloads accepted by the mutation endpoints. A nil pointer means the
// field was absent or null.

type createPayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type updatePayload struct {
	ID    *recordID `json:"id"`
	Name  *string   `json:"name"`
	Email *string   `json:"email"`
}

type deletePayload struct {
	ID *recordID `json:"id"`
}

type batchDeletePayload struct {
	IDs []recordID `json:"ids"`
}

func (p batchDeletePayload) request() core.BatchDeleteRequest {
	ids := make([]int64, len(p.IDs))
	for i, id := range p.IDs {
		ids[i] = int64(id)
	}
	return core.BatchDeleteRequest{IDs: ids}
}
