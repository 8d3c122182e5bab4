package dto

import (
	"net/url"
	"strconv"

	"github.com/userbase/userbase/internal/apperr"
)

// Pagination limits.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is the metadata attached to list responses.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// ParsePagination extracts and validates page/limit query parameters.
// Absent parameters take defaults; malformed or out-of-range values are a
// validation error.
func ParsePagination(query url.Values) (page, limit int, err *apperr.Error) {
	page = DefaultPage
	limit = DefaultLimit

	if raw := query.Get("page"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 1 {
			return 0, 0, apperr.Validation("VALIDATION_ERROR", "Validation failed").
				WithDetails(map[string]any{"page": "Page must be a positive number"})
		}
		page = parsed
	}

	if raw := query.Get("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 1 || parsed > MaxLimit {
			return 0, 0, apperr.Validation("VALIDATION_ERROR", "Validation failed").
				WithDetails(map[string]any{"limit": "Limit must be between 1 and 100"})
		}
		limit = parsed
	}

	return page, limit, nil
}

// PaginationMeta computes the metadata for one page.
func PaginationMeta(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
