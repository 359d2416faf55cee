package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/pkg/database"
)

// PostgresRequestRepository implements RequestRepository using PostgreSQL
type PostgresRequestRepository struct {
	db database.Querier
}

// NewPostgresRequestRepository creates a new PostgresRequestRepository
func NewPostgresRequestRepository(db database.Querier) *PostgresRequestRepository {
	return &PostgresRequestRepository{db: db}
}

const requestColumns = `id, requester_id, event_id, created, status`

func scanRequest(row pgx.Row) (domain.ParticipationRequest, error) {
	var r domain.ParticipationRequest
	var status string
	if err := row.Scan(&r.ID, &r.RequesterID, &r.EventID, &r.Created, &status); err != nil {
		return r, err
	}
	r.Status = domain.RequestStatus(status)
	return r, nil
}

func (r *PostgresRequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.ParticipationRequest, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.ParticipationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}

// Create inserts a request and sets its ID
func (r *PostgresRequestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (requester_id, event_id, created, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		req.RequesterID,
		req.EventID,
		req.Created,
		string(req.Status),
	).Scan(&req.ID)
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return fmt.Errorf("%w: user %d, event %d", domain.ErrDuplicateRequest, req.RequesterID, req.EventID)
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *PostgresRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1`

	req, err := scanRequest(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

// UpdateStatus sets the status of one request
func (r *PostgresRequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	tag, err := database.Conn(ctx, r.db).Exec(ctx,
		`UPDATE participation_requests SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// UpdateStatuses sets the status of several requests of one event
func (r *PostgresRequestRepository) UpdateStatuses(ctx context.Context, eventID int64, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}

	tag, err := database.Conn(ctx, r.db).Exec(ctx,
		`UPDATE participation_requests SET status = $3 WHERE event_id = $1 AND id = ANY($2)`,
		eventID, ids, string(status))
	if err != nil {
		return fmt.Errorf("failed to update request statuses: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("%w: updated %d of %d requests", domain.ErrRequestNotFound, tag.RowsAffected(), len(ids))
	}
	return nil
}

// ListByRequester lists the requests made by a user
func (r *PostgresRequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]domain.ParticipationRequest, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE requester_id = $1 ORDER BY id`,
		requesterID)
}

// ListByEvent lists the requests made for an event
func (r *PostgresRequestRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.ParticipationRequest, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE event_id = $1 ORDER BY id`,
		eventID)
}

// ListByEventAndIDs lists the requests of an event among ids
func (r *PostgresRequestRepository) ListByEventAndIDs(ctx context.Context, eventID int64, ids []int64) ([]domain.ParticipationRequest, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE event_id = $1 AND id = ANY($2) ORDER BY id`,
		eventID, ids)
}

// ExistsWithStatus reports whether requesterID has a request for eventID in the given status
func (r *PostgresRequestRepository) ExistsWithStatus(ctx context.Context, requesterID, eventID int64, status domain.RequestStatus) (bool, error) {
	var exists bool
	err := database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participation_requests WHERE requester_id = $1 AND event_id = $2 AND status = $3)`,
		requesterID, eventID, string(status)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check request: %w", err)
	}
	return exists, nil
}
