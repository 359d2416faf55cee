package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/pkg/database"
)

// PostgresTransactor implements Transactor on a pgx pool
type PostgresTransactor struct {
	db database.TxBeginner
}

// NewPostgresTransactor creates a new PostgresTransactor
func NewPostgresTransactor(db database.TxBeginner) *PostgresTransactor {
	return &PostgresTransactor{db: db}
}

// WithinTransaction runs fn in one transaction carried by its context
func (t *PostgresTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.RunInTx(ctx, t.db, fn)
}

// WithinEventLock runs fn in one transaction after locking the event row with
// SELECT ... FOR UPDATE. Concurrent callers for the same event wait for the lock.
func (t *PostgresTransactor) WithinEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context) error) error {
	return database.RunInTx(ctx, t.db, func(ctx context.Context) error {
		tx, _ := database.TxFromContext(ctx)

		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("failed to lock event %d: %w", eventID, err)
		}

		return fn(ctx)
	})
}
