package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationParams are the list options read from the query string
type PaginationParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
}

// ExtractPaginationParams reads page, page_size, sort and order. Invalid
// values fall back to page 1 of 20, newest first; page_size is capped.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	query := r.URL.Query()
	params := PaginationParams{
		Page:     positiveInt(query.Get("page"), 1),
		PageSize: min(positiveInt(query.Get("page_size"), defaultPageSize), maxPageSize),
		Sort:     query.Get("sort"),
		Order:    "desc",
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		params.Order = order
	}
	return params
}

func positiveInt(raw string, fallback int) int {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return fallback
}

// PaginatedResult is one page of a list together with its position
type PaginatedResult struct {
	Items      interface{}     `json:"items"`
	Pagination *PaginationInfo `json:"pagination"`
}

// Paginate cuts page out of items. A page past the end is empty, never nil.
func Paginate[T any](items []T, page, pageSize int) *PaginatedResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total := len(items)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	totalPages := (total + pageSize - 1) / pageSize
	return &PaginatedResult{
		Items: append([]T{}, items[start:end]...),
		Pagination: &PaginationInfo{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
