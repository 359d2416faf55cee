package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/pkg/database"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	db database.Querier
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(db database.Querier) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// scanEvent scans a row produced by eventSelect into an Event
func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var state string

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Annotation,
		&e.Description,
		&e.Category.ID,
		&e.Category.Name,
		&e.Initiator.ID,
		&e.Initiator.Name,
		&e.Location.Lat,
		&e.Location.Lon,
		&e.Paid,
		&e.ParticipantLimit,
		&e.RequestModeration,
		&state,
		&e.CreatedOn,
		&e.PublishedOn,
		&e.EventDate,
		&e.ConfirmedRequests,
	)
	if err != nil {
		return nil, err
	}

	e.State = domain.EventState(state)
	return e, nil
}

func (r *PostgresEventRepository) queryOne(ctx context.Context, stmt *goqu.SelectDataset) (*domain.Event, error) {
	query, args, err := stmt.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	e, err := scanEvent(database.Conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *PostgresEventRepository) queryMany(ctx context.Context, query string, args []interface{}) ([]*domain.Event, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// Create inserts a new event and sets its ID
func (r *PostgresEventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			title, annotation, description, category_id, initiator_id, lat, lon,
			paid, participant_limit, request_moderation, state, created_on, published_on, event_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		e.Title,
		e.Annotation,
		e.Description,
		e.Category.ID,
		e.Initiator.ID,
		e.Location.Lat,
		e.Location.Lon,
		e.Paid,
		e.ParticipantLimit,
		e.RequestModeration,
		string(e.State),
		e.CreatedOn,
		e.PublishedOn,
		e.EventDate,
	).Scan(&e.ID)
	if err != nil {
		if database.IsPgError(err, database.ForeignKeyViolation) {
			return fmt.Errorf("%w: %v", domain.ErrUnknownCategory, err)
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return r.queryOne(ctx, eventSelect().Where(goqu.I("e.id").Eq(id)))
}

// GetByIDAndInitiator retrieves an event owned by initiatorID
func (r *PostgresEventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	return r.queryOne(ctx, eventSelect().Where(
		goqu.I("e.id").Eq(id),
		goqu.I("e.initiator_id").Eq(initiatorID),
	))
}

// Update persists the mutable fields of an event
func (r *PostgresEventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET
			title = $2,
			annotation = $3,
			description = $4,
			category_id = $5,
			lat = $6,
			lon = $7,
			paid = $8,
			participant_limit = $9,
			request_moderation = $10,
			state = $11,
			published_on = $12,
			event_date = $13
		WHERE id = $1`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query,
		e.ID,
		e.Title,
		e.Annotation,
		e.Description,
		e.Category.ID,
		e.Location.Lat,
		e.Location.Lon,
		e.Paid,
		e.ParticipantLimit,
		e.RequestModeration,
		string(e.State),
		e.PublishedOn,
		e.EventDate,
	)
	if err != nil {
		if database.IsPgError(err, database.ForeignKeyViolation) {
			return fmt.Errorf("%w: %v", domain.ErrUnknownCategory, err)
		}
		return fmt.Errorf("failed to update event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// ListByInitiator lists the events of one user ordered by id
func (r *PostgresEventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.Page) ([]*domain.Event, error) {
	query, args, err := eventSelect().
		Where(goqu.I("e.initiator_id").Eq(initiatorID)).
		Order(goqu.I("e.id").Asc()).
		Limit(uint(page.Size)).
		Offset(uint(page.From)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}
	return r.queryMany(ctx, query, args)
}

// Search lists events matching the filter. A nil page returns every match.
func (r *PostgresEventRepository) Search(ctx context.Context, filter domain.EventSearch, page *domain.Page) ([]*domain.Event, error) {
	query, args, err := buildSearchQuery(filter, page)
	if err != nil {
		return nil, err
	}
	return r.queryMany(ctx, query, args)
}
