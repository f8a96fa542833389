package service

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// SortMemories returns a sorted copy of memories. The sort is stable, so
// records that compare equal keep their storage order.
//
// newest/oldest order by the memory's calendar date, breaking ties by
// creation time. location/title use a locale-aware, case-insensitive
// comparison and break ties by creation time.
func SortMemories(memories []domain.Memory, order domain.SortOrder) []domain.Memory {
	out := slices.Clone(memories)

	switch order {
	case domain.SortOldest:
		slices.SortStableFunc(out, func(a, b domain.Memory) int {
			return cmp.Or(cmp.Compare(a.Date, b.Date), a.CreatedAt.Compare(b.CreatedAt))
		})
	case domain.SortLocation:
		c := newCollator()
		slices.SortStableFunc(out, func(a, b domain.Memory) int {
			return cmp.Or(c.CompareString(a.Location, b.Location), a.CreatedAt.Compare(b.CreatedAt))
		})
	case domain.SortTitle:
		c := newCollator()
		slices.SortStableFunc(out, func(a, b domain.Memory) int {
			return cmp.Or(c.CompareString(a.Title, b.Title), a.CreatedAt.Compare(b.CreatedAt))
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Memory) int {
			return cmp.Or(cmp.Compare(b.Date, a.Date), b.CreatedAt.Compare(a.CreatedAt))
		})
	}
	return out
}

// newCollator is called per sort; a Collator is not safe for concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}
