package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/pkg/database"
)

// PostgresRatingRepository implements RatingRepository using PostgreSQL
type PostgresRatingRepository struct {
	db database.Querier
}

// NewPostgresRatingRepository creates a new PostgresRatingRepository
func NewPostgresRatingRepository(db database.Querier) *PostgresRatingRepository {
	return &PostgresRatingRepository{db: db}
}

// Add stores a vote; the (rater, event) primary key rejects a second vote
func (r *PostgresRatingRepository) Add(ctx context.Context, vote domain.Vote) error {
	_, err := database.Conn(ctx, r.db).Exec(ctx,
		`INSERT INTO event_ratings (rater_id, event_id, value) VALUES ($1, $2, $3)`,
		vote.RaterID, vote.EventID, int(vote.Value))
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return fmt.Errorf("%w: user %d, event %d", domain.ErrDuplicateVote, vote.RaterID, vote.EventID)
		}
		return fmt.Errorf("failed to add vote: %w", err)
	}
	return nil
}

// Delete removes the exact (rater, event, value) vote
func (r *PostgresRatingRepository) Delete(ctx context.Context, vote domain.Vote) error {
	tag, err := database.Conn(ctx, r.db).Exec(ctx,
		`DELETE FROM event_ratings WHERE rater_id = $1 AND event_id = $2 AND value = $3`,
		vote.RaterID, vote.EventID, int(vote.Value))
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVoteNotFound
	}
	return nil
}

// SumForEvent returns the vote sum of an event, 0 if none
func (r *PostgresRatingRepository) SumForEvent(ctx context.Context, eventID int64) (int64, error) {
	var sum int64
	err := database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT COALESCE(SUM(value), 0) FROM event_ratings WHERE event_id = $1`, eventID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return sum, nil
}

// SumForEvents returns vote sums by event id; events without votes are omitted
func (r *PostgresRatingRepository) SumForEvents(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	sums := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return sums, nil
	}

	rows, err := database.Conn(ctx, r.db).Query(ctx,
		`SELECT event_id, SUM(value) FROM event_ratings WHERE event_id = ANY($1) GROUP BY event_id`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, sum int64
		if err := rows.Scan(&eventID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan vote sum: %w", err)
		}
		sums[eventID] = sum
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vote sums: %w", err)
	}
	return sums, nil
}
