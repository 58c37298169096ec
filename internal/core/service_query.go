package core

import (
	"context"
	"fmt"
)

// List returns one page of records matching params together with the
// total number of matches.
//
// The total is counted with the same filter but without pagination, so a
// page past the end yields no items while Total still reflects every match.
// An empty SortBy orders by id. Any other unknown SortBy leaves the store's
// default order in place unless the service runs with StrictSort.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	filter := Filter{Search: params.Search}

	sort, err := s.resolveSort(params.SortBy, params.Order)
	if err != nil {
		return nil, err
	}

	page := s.normalizePage(params.Page, params.PerPage)

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	items := []Record{}
	if _, ok := page.Offset(); ok {
		found, err := s.store.Find(ctx, filter, sort, page)
		if err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}
		if found != nil {
			items = found
		}
	}

	return &ListResult{
		Items:   items,
		Total:   total,
		Page:    page.Number,
		PerPage: page.Size,
	}, nil
}

// resolveSort turns request values into a SortSpec.
func (s *Service) resolveSort(sortBy, order string) (SortSpec, error) {
	if sortBy == "" {
		sortBy = string(SortID)
	}
	if _, ok := ParseSortField(sortBy); !ok && s.opts.StrictSort {
		return SortSpec{}, &ValidationError{
			Field:   "sort_by",
			Message: fmt.Sprintf("unsupported sort field %q (use id, name or email)", sortBy),
		}
	}
	return ParseSort(sortBy, order), nil
}

// normalizePage clamps the page number to 1 and replaces a non-positive
// page size with the configured default.
func (s *Service) normalizePage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = s.opts.DefaultPerPage
	}
	return Page{Number: number, Size: size}
}
