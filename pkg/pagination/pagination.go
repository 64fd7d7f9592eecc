// Package pagination slices already-materialized sequences into display pages.
package pagination

import "github.com/iwvelando/loan-schedule/pkg/constants"

// Page is one zero-based page of items.
type Page[T any] struct {
	Items       []T `json:"items"`
	Page        int `json:"page"`
	RowsPerPage int `json:"rowsPerPage"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// Paginate returns page (zero-based) of items with rowsPerPage entries. A non-positive
// rowsPerPage falls back to the default, larger values are capped. A negative or out of
// range page yields an empty Items slice. The returned Items never alias items.
func Paginate[T any](items []T, page, rowsPerPage int) Page[T] {
	if rowsPerPage <= 0 {
		rowsPerPage = constants.DefaultRowsPerPage
	}
	if rowsPerPage > constants.MaxRowsPerPage {
		rowsPerPage = constants.MaxRowsPerPage
	}

	result := Page[T]{
		Items:       []T{},
		Page:        page,
		RowsPerPage: rowsPerPage,
		TotalItems:  len(items),
		TotalPages:  (len(items) + rowsPerPage - 1) / rowsPerPage,
	}

	if page < 0 || page >= result.TotalPages {
		return result
	}
	start := page * rowsPerPage
	end := start + rowsPerPage
	if end > len(items) {
		end = len(items)
	}

	result.Items = append(result.Items, items[start:end]...)
	return result
}
