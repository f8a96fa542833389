package domain

import "time"

// DateLayout is the calendar-date format of Memory.Date.
const DateLayout = "2006-01-02"

// Memory is a single travel memory owned by one user.
type Memory struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	ImageURL    string    `json:"imageUrl"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewMemory holds the caller-supplied fields of a memory being added.
type NewMemory struct {
	UserID      string
	Title       string
	Description string
	Location    string
	Date        string
	ImageURL    string
	Tags        []string
}

// MemoryUpdate lists the fields an update may replace. A nil field is left
// unchanged. ID, UserID and CreatedAt are deliberately not representable.
type MemoryUpdate struct {
	Title       *string
	Description *string
	Location    *string
	Date        *string
	ImageURL    *string
	Tags        *[]string
}

// SortOrder selects how a memory listing is ordered.
type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortLocation SortOrder = "location"
	SortTitle    SortOrder = "title"
)

// ParseSortOrder maps a query value to a SortOrder, defaulting to SortNewest.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldest, SortLocation, SortTitle:
		return SortOrder(s)
	default:
		return SortNewest
	}
}
