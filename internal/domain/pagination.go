package domain

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ParseSortOrder accepts "asc"/"desc" in any case. ok is false for
// anything else.
func ParseSortOrder(s string) (order SortOrder, ok bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(SortOrderAsc)):
		return SortOrderAsc, true
	case strings.EqualFold(strings.TrimSpace(s), string(SortOrderDesc)):
		return SortOrderDesc, true
	}
	return SortOrderDesc, false
}

// PaginationQuery carries the optional listing parameters. Zero values mean
// "not supplied".
type PaginationQuery struct {
	Page      int       `json:"page" validate:"omitempty,gte=1"`
	Limit     int       `json:"limit" validate:"omitempty,gte=1"`
	Search    string    `json:"search"`
	Sort      string    `json:"sort"`
	SortOrder SortOrder `json:"sort_order" validate:"omitempty,oneof=ASC DESC"`
}

func (q PaginationQuery) GetPage() int {
	if q.Page < 1 {
		return DefaultPage
	}
	return q.Page
}

func (q PaginationQuery) GetLimit() int {
	if q.Limit < 1 {
		return DefaultLimit
	}
	return q.Limit
}

func (q PaginationQuery) GetOffset() int {
	return (q.GetPage() - 1) * q.GetLimit()
}

// GetSearch returns the trimmed search term and whether one was supplied
func (q PaginationQuery) GetSearch() (string, bool) {
	s := strings.TrimSpace(q.Search)
	return s, s != ""
}

func (q PaginationQuery) GetSortOrder() SortOrder {
	if q.SortOrder == SortOrderAsc {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// Page is a single page of a listing
type Page[T any] struct {
	Data      []T    `json:"data"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	TotalData uint64 `json:"total_data"`
	TotalPage uint64 `json:"total_page"`
}

// NewPage echoes page and limit back from the query and derives the page
// count as ceil(total / limit).
func NewPage[T any](data []T, q PaginationQuery, total uint64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:      data,
		Page:      q.GetPage(),
		Limit:     q.GetLimit(),
		TotalData: total,
		TotalPage: TotalPages(total, q.GetLimit()),
	}
}

// TotalPages computes ceil(total / limit) without floating point
func TotalPages(total uint64, limit int) uint64 {
	if limit < 1 {
		limit = DefaultLimit
	}
	l := uint64(limit)
	return (total + l - 1) / l
}
