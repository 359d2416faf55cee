package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventSort is the ordering of a public search
type EventSort string

const (
	SortNone      EventSort = ""
	SortEventDate EventSort = "EVENT_DATE"
	SortViews     EventSort = "VIEWS"
	SortRating    EventSort = "RATING"
)

// ParseEventSort parses a sort name; an empty string means no explicit sort
func ParseEventSort(s string) (EventSort, error) {
	sort := EventSort(strings.ToUpper(strings.TrimSpace(s)))
	switch sort {
	case SortNone, SortEventDate, SortViews, SortRating:
		return sort, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
}

// IsComputed reports whether ordering depends on decorations that are not stored
func (s EventSort) IsComputed() bool {
	return s == SortViews || s == SortRating
}

// Page is an offset window over a result set
type Page struct {
	From int
	Size int
}

// Validate checks the window bounds
func (p Page) Validate() error {
	if p.From < 0 || p.Size <= 0 {
		return ErrInvalidPagination
	}
	return nil
}

// Slice returns the part of n items covered by the page as [start, end)
func (p Page) Slice(n int) (start, end int) {
	start = min(p.From, n)
	end = min(start+p.Size, n)
	return start, end
}

// EventSearch is the filter set shared by the admin and public searches.
// Zero values mean "no filter".
type EventSearch struct {
	Text          string
	Users         []int64
	States        []EventState
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
}

// CheckRange fails when RangeStart is after RangeEnd
func (s *EventSearch) CheckRange() error {
	if s.RangeStart != nil && s.RangeEnd != nil && s.RangeStart.After(*s.RangeEnd) {
		return ErrInvalidDateRange
	}
	return nil
}
