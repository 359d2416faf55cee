package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/migrations"
	"github.com/prohmpiriya/explore-events/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getPostgresPool connects to the test database, migrates it and empties every table
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	skipIfNoIntegration(t)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("TEST_POSTGRES_USER", "postgres"),
		envOr("TEST_POSTGRES_PASSWORD", "postgres"),
		envOr("TEST_POSTGRES_HOST", "localhost"),
		envOr("TEST_POSTGRES_PORT", "5432"),
		envOr("TEST_POSTGRES_DB", "explore_events_test"),
	)

	m, err := database.NewMigrator(migrations.FS, migrations.Dir, connStr)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "failed to create PostgreSQL pool")
	require.NoError(t, pool.Ping(ctx), "failed to ping PostgreSQL")
	t.Cleanup(pool.Close)

	cleanupTestData(t, pool)
	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE event_ratings, participation_requests, events, categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "failed to clean up test data")
}

func insertUser(t *testing.T, pool *pgxpool.Pool, name string) domain.UserShort {
	t.Helper()
	u := domain.UserShort{Name: name}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id`,
		name, name+"@example.com").Scan(&u.ID)
	require.NoError(t, err)
	return u
}

func insertCategory(t *testing.T, pool *pgxpool.Pool, name string) domain.Category {
	t.Helper()
	c := domain.Category{Name: name}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	require.NoError(t, err)
	return c
}

// insertPublishedEvent stores a published event starting in a week
func insertPublishedEvent(t *testing.T, pool *pgxpool.Pool, initiator domain.UserShort, category domain.Category, limit int) *domain.Event {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	e := &domain.Event{
		Title:             "Jazz night",
		Annotation:        "An evening of improvised jazz",
		Description:       "Three sets of live jazz by local trios",
		Category:          category,
		Initiator:         initiator,
		Location:          domain.Location{Lat: 55.75, Lon: 37.62},
		ParticipantLimit:  limit,
		RequestModeration: true,
		State:             domain.EventStatePublished,
		CreatedOn:         now.Add(-time.Hour),
		PublishedOn:       &now,
		EventDate:         now.Add(7 * 24 * time.Hour),
	}
	require.NoError(t, NewPostgresEventRepository(pool).Create(context.Background(), e))
	return e
}

func insertRequest(t *testing.T, pool *pgxpool.Pool, requester domain.UserShort, eventID int64, status domain.RequestStatus) int64 {
	t.Helper()
	req := &domain.ParticipationRequest{
		RequesterID: requester.ID,
		EventID:     eventID,
		Created:     time.Now().UTC(),
		Status:      status,
	}
	require.NoError(t, NewPostgresRequestRepository(pool).Create(context.Background(), req))
	return req.ID
}
