package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

func TestBuildSearchQuery_NoFilter(t *testing.T) {
	query, args, err := buildSearchQuery(domain.EventSearch{}, nil)
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "events" AS "e"`)
	assert.Contains(t, query, `INNER JOIN "categories" AS "c"`)
	assert.Contains(t, query, `AS "confirmed_requests"`)
	assert.Contains(t, query, `ORDER BY "e"."id" ASC`)
	assert.NotContains(t, query, "LIMIT")
	// the CONFIRMED status of the count subquery is the only argument
	assert.Equal(t, []interface{}{"CONFIRMED"}, args)
}

func TestBuildSearchQuery_PublicFilters(t *testing.T) {
	paid := true
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	query, args, err := buildSearchQuery(domain.EventSearch{
		Text:          "jazz",
		States:        []domain.EventState{domain.EventStatePublished},
		Categories:    []int64{1, 2},
		Paid:          &paid,
		RangeStart:    &start,
		RangeEnd:      &end,
		OnlyAvailable: true,
		Sort:          domain.SortEventDate,
	}, &domain.Page{From: 20, Size: 10})
	require.NoError(t, err)

	assert.Contains(t, query, `"e"."annotation" ILIKE`)
	assert.Contains(t, query, `"e"."description" ILIKE`)
	assert.Contains(t, query, `"e"."state" IN`)
	assert.Contains(t, query, `"e"."category_id" IN`)
	assert.Contains(t, query, `"e"."paid" IS TRUE`)
	assert.Contains(t, query, `"e"."event_date" >=`)
	assert.Contains(t, query, `"e"."event_date" <=`)
	assert.Contains(t, query, `"e"."participant_limit" >`)
	assert.Contains(t, query, `ORDER BY "e"."event_date" ASC, "e"."id" ASC`)
	assert.Contains(t, query, "LIMIT $")
	assert.Contains(t, query, "OFFSET $")
	assert.NotContains(t, query, "jazz", "text must be bound, not inlined")

	assert.Contains(t, args, "%jazz%")
	assert.Contains(t, args, "PUBLISHED")
	assert.Contains(t, args, start)
	assert.Contains(t, args, end)
}

func TestBuildSearchQuery_AdminFilters(t *testing.T) {
	query, args, err := buildSearchQuery(domain.EventSearch{
		Users:  []int64{5},
		States: []domain.EventState{domain.EventStatePending, domain.EventStateCanceled},
	}, &domain.Page{From: 0, Size: 10})
	require.NoError(t, err)

	assert.Contains(t, query, `"e"."initiator_id" IN`)
	assert.False(t, strings.Contains(query, "ILIKE"))
	assert.Contains(t, args, int64(5))
	assert.Contains(t, args, "PENDING")
	assert.Contains(t, args, "CANCELED")
}

func TestBuildSearchQuery_TextIsMatchedLiterally(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"jazz", `%jazz%`},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\tmp`, `%c:\\tmp%`},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, args, err := buildSearchQuery(domain.EventSearch{Text: tt.text}, nil)
			require.NoError(t, err)
			assert.Contains(t, args, tt.want)
		})
	}
}
