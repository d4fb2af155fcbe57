package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total uint64
		limit int
		want  uint64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 2, 3},
		{5, 0, 1},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestProperty_TotalPagesCoversEveryItem(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pages hold every item and no page is empty", prop.ForAll(
		func(total uint64, limit int) bool {
			pages := TotalPages(total, limit)
			l := uint64(limit)
			if total == 0 {
				return pages == 0
			}
			return pages*l >= total && (pages-1)*l < total
		},
		gen.UInt64Range(0, 1_000_000),
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPaginationQueryDefaults(t *testing.T) {
	var q PaginationQuery

	if q.GetPage() != DefaultPage || q.GetLimit() != DefaultLimit || q.GetOffset() != 0 {
		t.Errorf("unexpected defaults page=%d limit=%d offset=%d", q.GetPage(), q.GetLimit(), q.GetOffset())
	}
	if q.GetSortOrder() != SortOrderDesc {
		t.Errorf("expected DESC by default, got %s", q.GetSortOrder())
	}
	if _, ok := q.GetSearch(); ok {
		t.Error("empty search reported as supplied")
	}

	negative := PaginationQuery{Page: -3, Limit: 0}
	if negative.GetPage() != DefaultPage || negative.GetLimit() != DefaultLimit {
		t.Error("values below 1 must fall back to defaults")
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in     string
		want   SortOrder
		wantOK bool
	}{
		{"asc", SortOrderAsc, true},
		{" ASC ", SortOrderAsc, true},
		{"desc", SortOrderDesc, true},
		{"DESC", SortOrderDesc, true},
		{"", SortOrderDesc, false},
		{"sideway", SortOrderDesc, false},
	}
	for _, tt := range tests {
		got, ok := ParseSortOrder(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseSortOrder(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage[string](nil, PaginationQuery{Page: 3, Limit: 2}, 5)

	if p.Data == nil || len(p.Data) != 0 {
		t.Error("nil data must become an empty slice")
	}
	if p.Page != 3 || p.Limit != 2 || p.TotalData != 5 || p.TotalPage != 3 {
		t.Errorf("unexpected page %+v", p)
	}
}
