package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

// PageQuery is the from/size window of list endpoints
type PageQuery struct {
	From int `form:"from,default=0"`
	Size int `form:"size,default=10"`
}

// ToDomain converts the window, validating its bounds
func (q PageQuery) ToDomain() (domain.Page, error) {
	page := domain.Page{From: q.From, Size: q.Size}
	if err := page.Validate(); err != nil {
		return domain.Page{}, err
	}
	return page, nil
}

// AdminSearchQuery holds the filters of GET /admin/events.
// List parameters accept repeated keys and comma-separated values.
type AdminSearchQuery struct {
	Users      []string `form:"users"`
	States     []string `form:"states"`
	Categories []string `form:"categories"`
	RangeStart string   `form:"rangeStart"`
	RangeEnd   string   `form:"rangeEnd"`
	PageQuery
}

// ToDomain converts the query to a search filter and page
func (q AdminSearchQuery) ToDomain() (domain.EventSearch, domain.Page, error) {
	var (
		filter domain.EventSearch
		err    error
	)
	if filter.Users, err = parseIDs("users", q.Users); err != nil {
		return filter, domain.Page{}, err
	}
	if filter.Categories, err = parseIDs("categories", q.Categories); err != nil {
		return filter, domain.Page{}, err
	}
	for _, s := range splitValues(q.States) {
		state, err := domain.ParseEventState(s)
		if err != nil {
			return filter, domain.Page{}, err
		}
		filter.States = append(filter.States, state)
	}
	if filter.RangeStart, filter.RangeEnd, err = parseRange(q.RangeStart, q.RangeEnd); err != nil {
		return filter, domain.Page{}, err
	}

	page, err := q.PageQuery.ToDomain()
	return filter, page, err
}

// PublicSearchQuery holds the filters of GET /events
type PublicSearchQuery struct {
	Text          string   `form:"text"`
	Categories    []string `form:"categories"`
	Paid          *bool    `form:"paid"`
	RangeStart    string   `form:"rangeStart"`
	RangeEnd      string   `form:"rangeEnd"`
	OnlyAvailable bool     `form:"onlyAvailable,default=false"`
	Sort          string   `form:"sort"`
	PageQuery
}

// ToDomain converts the query to a search filter and page
func (q PublicSearchQuery) ToDomain() (domain.EventSearch, domain.Page, error) {
	filter := domain.EventSearch{
		Text:          strings.TrimSpace(q.Text),
		Paid:          q.Paid,
		OnlyAvailable: q.OnlyAvailable,
	}

	var err error
	if filter.Categories, err = parseIDs("categories", q.Categories); err != nil {
		return filter, domain.Page{}, err
	}
	if filter.RangeStart, filter.RangeEnd, err = parseRange(q.RangeStart, q.RangeEnd); err != nil {
		return filter, domain.Page{}, err
	}
	if filter.Sort, err = domain.ParseEventSort(q.Sort); err != nil {
		return filter, domain.Page{}, err
	}

	page, err := q.PageQuery.ToDomain()
	return filter, page, err
}

// splitValues flattens repeated and comma-separated values, dropping blanks
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseIDs(name string, values []string) ([]int64, error) {
	var ids []int64
	for _, s := range splitValues(values) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must hold integer ids, got %q", domain.ErrInvalidParameter, name, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseRange(start, end string) (*time.Time, *time.Time, error) {
	var rangeStart, rangeEnd *time.Time
	if start != "" {
		t, err := ParseDateTime(start)
		if err != nil {
			return nil, nil, err
		}
		rangeStart = &t
	}
	if end != "" {
		t, err := ParseDateTime(end)
		if err != nil {
			return nil, nil, err
		}
		rangeEnd = &t
	}
	return rangeStart, rangeEnd, nil
}
