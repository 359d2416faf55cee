package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

func TestPostgresRequestRepository_DuplicateIsConflict(t *testing.T) {
	pool := getPostgresPool(t)

	owner := insertUser(t, pool, "owner")
	guest := insertUser(t, pool, "guest")
	event := insertPublishedEvent(t, pool, owner, insertCategory(t, pool, "Concerts"), 0)
	insertRequest(t, pool, guest, event.ID, domain.RequestStatusPending)

	err := NewPostgresRequestRepository(pool).Create(context.Background(), &domain.ParticipationRequest{
		RequesterID: guest.ID,
		EventID:     event.ID,
		Created:     time.Now().UTC(),
		Status:      domain.RequestStatusPending,
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestPostgresRequestRepository_UpdateStatusesChecksRowCount(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	repo := NewPostgresRequestRepository(pool)

	owner := insertUser(t, pool, "owner")
	category := insertCategory(t, pool, "Concerts")
	event := insertPublishedEvent(t, pool, owner, category, 0)
	other := insertPublishedEvent(t, pool, owner, category, 0)

	mine := insertRequest(t, pool, insertUser(t, pool, "a"), event.ID, domain.RequestStatusPending)
	foreign := insertRequest(t, pool, insertUser(t, pool, "b"), other.ID, domain.RequestStatusPending)

	err := repo.UpdateStatuses(ctx, event.ID, []int64{mine, foreign}, domain.RequestStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	require.NoError(t, repo.UpdateStatuses(ctx, event.ID, []int64{mine}, domain.RequestStatusConfirmed))
	got, err := repo.GetByID(ctx, mine)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusConfirmed, got.Status)
}

func TestPostgresTransactor_SplitRollsBackOnRejectFailure(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	repo := NewPostgresRequestRepository(pool)
	tx := NewPostgresTransactor(pool)

	owner := insertUser(t, pool, "owner")
	event := insertPublishedEvent(t, pool, owner, insertCategory(t, pool, "Concerts"), 1)
	confirm := insertRequest(t, pool, insertUser(t, pool, "a"), event.ID, domain.RequestStatusPending)
	reject := insertRequest(t, pool, insertUser(t, pool, "b"), event.ID, domain.RequestStatusPending)
	const missing = int64(9999)

	err := tx.WithinEventLock(ctx, event.ID, func(ctx context.Context) error {
		if err := repo.UpdateStatuses(ctx, event.ID, []int64{confirm}, domain.RequestStatusConfirmed); err != nil {
			return err
		}
		return repo.UpdateStatuses(ctx, event.ID, []int64{reject, missing}, domain.RequestStatusRejected)
	})
	require.ErrorIs(t, err, domain.ErrRequestNotFound)

	for _, id := range []int64{confirm, reject} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, got.Status, "request %d", id)
	}

	stored, err := NewPostgresEventRepository(pool).GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ConfirmedRequests)
}

func TestPostgresTransactor_EventLockSerializesAdmissions(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()
	events := NewPostgresEventRepository(pool)
	requests := NewPostgresRequestRepository(pool)
	tx := NewPostgresTransactor(pool)

	owner := insertUser(t, pool, "owner")
	event := insertPublishedEvent(t, pool, owner, insertCategory(t, pool, "Concerts"), 2)

	const callers = 10
	guests := make([]domain.UserShort, callers)
	for i := range guests {
		guests[i] = insertUser(t, pool, "guest"+string(rune('a'+i)))
	}

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for _, guest := range guests {
		wg.Add(1)
		go func(guest domain.UserShort) {
			defer wg.Done()
			err := tx.WithinEventLock(ctx, event.ID, func(ctx context.Context) error {
				e, err := events.GetByID(ctx, event.ID)
				if err != nil {
					return err
				}
				if e.IsFull() {
					return domain.ErrParticipantLimitReached
				}
				return requests.Create(ctx, &domain.ParticipationRequest{
					RequesterID: guest.ID,
					EventID:     event.ID,
					Created:     time.Now().UTC(),
					Status:      domain.RequestStatusConfirmed,
				})
			})
			if err == nil {
				admitted.Add(1)
			} else if !errors.Is(err, domain.ErrParticipantLimitReached) {
				t.Errorf("unexpected admission error: %v", err)
			}
		}(guest)
	}
	wg.Wait()

	assert.Equal(t, int32(2), admitted.Load())
	stored, err := events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ConfirmedRequests)
}

func TestPostgresTransactor_EventLockUnknownEvent(t *testing.T) {
	pool := getPostgresPool(t)

	called := false
	err := NewPostgresTransactor(pool).WithinEventLock(context.Background(), 404, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.False(t, called)
}
