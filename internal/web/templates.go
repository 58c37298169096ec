package web

import "slices"

//go:generate templ generate -f index.templ

// pageSettings are server settings the browser UI needs.
type pageSettings struct {
	PerPage     int
	MaxFileSize int64
}

var basePerPageOptions = []int{10, 25, 50, 100}

// perPageOptions lists the page sizes offered by the pager, including the
// configured default when it is not one of the standard sizes.
func (p pageSettings) perPageOptions() []int {
	opts := slices.Clone(basePerPageOptions)
	if p.PerPage > 0 && !slices.Contains(opts, p.PerPage) {
		opts = append(opts, p.PerPage)
		slices.Sort(opts)
	}
	return opts
}
