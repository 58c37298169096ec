package core

import (
	"math"
	"strconv"
)

// Record is a single person entry managed by the service.
type Record struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewRecord holds the fields of a record that has not been assigned an id yet.
type NewRecord struct {
	Name  string
	Email string
}

// Fields is a partial update. Nil fields are left unchanged.
type Fields struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether no field is set.
func (f Fields) IsEmpty() bool {
	return f.Name == nil && f.Email == nil
}

// Filter is the search condition applied before counting and paginating.
//
// A non-empty Search matches a record when the name contains it, the email
// contains it, or the id equals it parsed as a base-10 integer. Matching is
// an exact, case-sensitive substring test.
type Filter struct {
	Search string
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return f.Search == ""
}

// IDMatch returns the id the search term denotes, if it parses as one.
func (f Filter) IDMatch() (int64, bool) {
	if f.Search == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(f.Search, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SortField is a whitelisted column the result set can be ordered by.
type SortField string

const (
	SortNone  SortField = ""
	SortID    SortField = "id"
	SortName  SortField = "name"
	SortEmail SortField = "email"
)

// SortSpec is a field + direction pair controlling result ordering.
// SortNone leaves the store's default order in place.
type SortSpec struct {
	Field SortField
	Desc  bool
}

// ParseSortField returns the whitelisted field for name, or false.
func ParseSortField(name string) (SortField, bool) {
	switch SortField(name) {
	case SortID, SortName, SortEmail:
		return SortField(name), true
	default:
		return SortNone, false
	}
}

// ParseSort builds a SortSpec from request values. Unknown fields yield
// SortNone. Only "desc" reverses the order; anything else is ascending.
func ParseSort(sortBy, order string) SortSpec {
	field, _ := ParseSortField(sortBy)
	return SortSpec{Field: field, Desc: order == "desc"}
}

// Page is a bounded slice of the filtered, sorted result set.
// Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip and false when the offset
// cannot be represented (the page is necessarily out of range).
func (p Page) Offset() (int64, bool) {
	if p.Number < 1 || p.Size < 1 {
		return 0, true
	}
	n := int64(p.Number - 1)
	size := int64(p.Size)
	if n > math.MaxInt64/size {
		return 0, false
	}
	return n * size, true
}

// ListParams are the inputs of a list or export request.
type ListParams struct {
	Search  string
	SortBy  string
	Order   string
	Page    int
	PerPage int
}

// ListResult is one page of records plus the total number of matches.
type ListResult struct {
	Items   []Record
	Total   int64
	Page    int
	PerPage int
}

// CreateRequest is the payload of a create call. A nil field was absent.
type CreateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdateRequest is the payload of an update call. A nil field was absent.
type UpdateRequest struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// DeleteRequest is the payload of a single delete call.
type DeleteRequest struct {
	ID *int64 `json:"id"`
}

// BatchDeleteRequest is the payload of a batch delete call.
type BatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// Upload is a file attached to an import request.
type Upload struct {
	FileName string
	Data     []byte
}

// ImportResult contains the outcome of a CSV import.
type ImportResult struct {
	ImportID string `json:"import_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}
