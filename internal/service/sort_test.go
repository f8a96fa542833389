package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/service"
)

func ids(ms []domain.Memory) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func sortFixture() []domain.Memory {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Memory{
		{ID: "1", Title: "banana", Location: "Rome", Date: "2024-03-01", CreatedAt: base},
		{ID: "2", Title: "Apple", Location: "athens", Date: "2023-12-25", CreatedAt: base.Add(time.Minute)},
		{ID: "3", Title: "cherry", Location: "Berlin", Date: "2024-03-01", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "4", Title: "apple", Location: "Rome", Date: "2025-01-10", CreatedAt: base.Add(3 * time.Minute)},
	}
}

func TestSortMemories(t *testing.T) {
	tests := []struct {
		order domain.SortOrder
		want  []string
	}{
		{domain.SortNewest, []string{"4", "3", "1", "2"}},
		{domain.SortOldest, []string{"2", "1", "3", "4"}},
		{domain.SortLocation, []string{"2", "3", "1", "4"}},
		{domain.SortTitle, []string{"2", "4", "1", "3"}},
		{domain.SortOrder("bogus"), []string{"4", "3", "1", "2"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.order), func(t *testing.T) {
			in := sortFixture()
			got := ids(service.SortMemories(in, tc.order))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
			// The input is never reordered.
			if ids(in)[0] != "1" || ids(in)[3] != "4" {
				t.Fatalf("input was mutated: %v", ids(in))
			}
		})
	}
}

func TestSortMemories_Deterministic(t *testing.T) {
	for _, order := range []domain.SortOrder{domain.SortNewest, domain.SortOldest, domain.SortLocation, domain.SortTitle} {
		first := ids(service.SortMemories(sortFixture(), order))
		for range 5 {
			again := ids(service.SortMemories(sortFixture(), order))
			for i := range first {
				if first[i] != again[i] {
					t.Fatalf("%s: unstable ordering %v vs %v", order, first, again)
				}
			}
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	cases := map[string]domain.SortOrder{
		"":         domain.SortNewest,
		"newest":   domain.SortNewest,
		"oldest":   domain.SortOldest,
		"location": domain.SortLocation,
		"title":    domain.SortTitle,
		"TITLE":    domain.SortNewest,
	}
	for in, want := range cases {
		if got := domain.ParseSortOrder(in); got != want {
			t.Errorf("ParseSortOrder(%q) = %q, want %q", in, got, want)
		}
	}
}
