package repository

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

const dialectPostgres = "postgres"

var pg = goqu.Dialect(dialectPostgres)

// confirmedCount is the correlated subquery deriving Event.ConfirmedRequests
func confirmedCount() *goqu.SelectDataset {
	return pg.From(goqu.T("participation_requests").As("pr")).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.I("pr.event_id").Eq(goqu.I("e.id")),
			goqu.I("pr.status").Eq(string(domain.RequestStatusConfirmed)),
		)
}

// eventSelect is the base select of every event read; scanEvent reads its columns in order
func eventSelect() *goqu.SelectDataset {
	return pg.From(goqu.T("events").As("e")).
		Join(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("e.category_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("e.initiator_id")))).
		Select(
			goqu.I("e.id"),
			goqu.I("e.title"),
			goqu.I("e.annotation"),
			goqu.I("e.description"),
			goqu.I("c.id"),
			goqu.I("c.name"),
			goqu.I("u.id"),
			goqu.I("u.name"),
			goqu.I("e.lat"),
			goqu.I("e.lon"),
			goqu.I("e.paid"),
			goqu.I("e.participant_limit"),
			goqu.I("e.request_moderation"),
			goqu.I("e.state"),
			goqu.I("e.created_on"),
			goqu.I("e.published_on"),
			goqu.I("e.event_date"),
			confirmedCount().As("confirmed_requests"),
		).
		Prepared(true)
}

// likeEscaper escapes LIKE metacharacters; backslash is PostgreSQL's default ESCAPE
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches text literally anywhere in the column
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// searchConditions translates a search filter into WHERE expressions
func searchConditions(f domain.EventSearch) []exp.Expression {
	var conds []exp.Expression

	if f.Text != "" {
		pattern := containsPattern(f.Text)
		conds = append(conds, goqu.Or(
			goqu.I("e.annotation").ILike(pattern),
			goqu.I("e.description").ILike(pattern),
		))
	}
	if len(f.Users) > 0 {
		conds = append(conds, goqu.I("e.initiator_id").In(f.Users))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		conds = append(conds, goqu.I("e.state").In(states))
	}
	if len(f.Categories) > 0 {
		conds = append(conds, goqu.I("e.category_id").In(f.Categories))
	}
	if f.Paid != nil {
		conds = append(conds, goqu.I("e.paid").Eq(*f.Paid))
	}
	if f.RangeStart != nil {
		conds = append(conds, goqu.I("e.event_date").Gte(*f.RangeStart))
	}
	if f.RangeEnd != nil {
		conds = append(conds, goqu.I("e.event_date").Lte(*f.RangeEnd))
	}
	if f.OnlyAvailable {
		conds = append(conds, goqu.Or(
			goqu.I("e.participant_limit").Eq(0),
			goqu.I("e.participant_limit").Gt(confirmedCount()),
		))
	}

	return conds
}

// buildSearchQuery renders the search as SQL with positional arguments
func buildSearchQuery(f domain.EventSearch, page *domain.Page) (string, []interface{}, error) {
	stmt := eventSelect().Where(searchConditions(f)...)

	if f.Sort == domain.SortEventDate {
		stmt = stmt.Order(goqu.I("e.event_date").Asc(), goqu.I("e.id").Asc())
	} else {
		stmt = stmt.Order(goqu.I("e.id").Asc())
	}

	if page != nil {
		stmt = stmt.Limit(uint(page.Size)).Offset(uint(page.From))
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build event search query: %w", err)
	}
	return query, args, nil
}
