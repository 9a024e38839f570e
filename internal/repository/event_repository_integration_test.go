package repository_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/mind-compass/internal/repository"
	"github.com/godilite/mind-compass/internal/repository/models"
)

func setupTestRepo(t *testing.T, now time.Time) *repository.EventRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewEventRepository(db, repository.WithClock(func() time.Time { return now }))
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func seedEvents(t *testing.T, repo *repository.EventRepository, now time.Time) {
	t.Helper()

	events := []struct {
		typ    string
		offset time.Duration
	}{
		{models.EventQuizComplete, 0},
		{models.EventQuizComplete, -time.Hour},
		{models.EventShareClick, -2 * time.Hour},
		{models.EventQuizStart, -3 * time.Hour},
		{models.EventPurchaseSuccess, -24 * time.Hour},
		{models.EventQuizComplete, -6 * 24 * time.Hour},
		{models.EventQuizComplete, -8 * 24 * time.Hour},
	}

	ctx := context.Background()
	for _, e := range events {
		err := repo.AppendEvent(ctx, models.Event{Type: e.typ, OccurredAt: now.Add(e.offset)})
		require.NoError(t, err)
	}
}

func TestEventRepository_Integration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	repo := setupTestRepo(t, now)
	seedEvents(t, repo, now)

	t.Run("DailyStats", func(t *testing.T) {
		stats, err := repo.DailyStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 7)

		assert.Equal(t, "2025-10-12", stats[0].Day)
		assert.Equal(t, "2025-10-18", stats[6].Day)
		for i := 1; i < len(stats); i++ {
			assert.Less(t, stats[i-1].Day, stats[i].Day)
		}

		assert.Equal(t, models.DailyAggregate{Day: "2025-10-18", QuizComplete: 2, ShareClick: 1}, stats[6])
		assert.Equal(t, models.DailyAggregate{Day: "2025-10-17", PurchaseSuccess: 1}, stats[5])
		assert.Equal(t, models.DailyAggregate{Day: "2025-10-12", QuizComplete: 1}, stats[0])
		assert.Equal(t, models.DailyAggregate{Day: "2025-10-14"}, stats[2])
	})

	t.Run("EventsSince", func(t *testing.T) {
		rows, err := repo.EventsSince(ctx, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, rows, 6)

		assert.Equal(t, models.EventQuizComplete, rows[0].Type)
		assert.True(t, rows[0].OccurredAt.Equal(now.Add(-6*24*time.Hour)))
		assert.True(t, rows[5].OccurredAt.Equal(now))
	})

	t.Run("EventsSince includes the boundary", func(t *testing.T) {
		rows, err := repo.EventsSince(ctx, now)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, models.EventQuizComplete, rows[0].Type)
	})
}

func TestEventRepository_AppendEventColumns(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	repo := setupTestRepo(t, now)

	minutes := 1.5
	userID := "u-1"
	err := repo.AppendEvent(ctx, models.Event{
		Type:       models.EventQuizComplete,
		Payload:    json.RawMessage(`{"typeKey":"ELA"}`),
		Minutes:    &minutes,
		UserID:     &userID,
		OccurredAt: now.In(time.FixedZone("KST", 9*3600)),
	})
	require.NoError(t, err)

	err = repo.AppendEvent(ctx, models.Event{Type: models.EventQuizStart, OccurredAt: now})
	require.NoError(t, err)

	rows, err := repo.EventsSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.UTC, rows[0].OccurredAt.Location())
}

func TestEventRepository_Sessions(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t, time.Now())

	created, err := repo.CreateAnonymousSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, created.UserID)
	assert.NotEmpty(t, created.Token)

	found, err := repo.CurrentSession(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	other, err := repo.CreateAnonymousSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, created.UserID, other.UserID)

	_, err = repo.CurrentSession(ctx, "not-a-token")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	_, err = repo.CurrentSession(ctx, "6f1c1b8e-93a4-4c55-9d63-8a0c6f3f0b11")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
