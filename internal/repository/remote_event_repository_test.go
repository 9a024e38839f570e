package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T, handler http.HandlerFunc) *RemoteEventRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteEventRepository(srv.URL+"/", "anon-key", WithHTTPClient(srv.Client()))
}

func TestRemoteEventRepository_AppendEvent(t *testing.T) {
	minutes := 2.5
	userID := "user-1"
	occurred := time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)

	repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, eventsPath, r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[{
			"type": "quiz_complete",
			"payload": {"typeKey": "ELA"},
			"minutes": 2.5,
			"user_id": "user-1",
			"occurred_at": "2025-05-01T12:30:00Z"
		}]`, string(body))

		w.WriteHeader(http.StatusCreated)
	})

	err := repo.AppendEvent(context.Background(), models.Event{
		Type:       models.EventQuizComplete,
		Payload:    json.RawMessage(`{"typeKey":"ELA"}`),
		Minutes:    &minutes,
		UserID:     &userID,
		OccurredAt: occurred,
	})
	assert.NoError(t, err)
}

func TestRemoteEventRepository_AppendEventWithSessionToken(t *testing.T) {
	userID := "user-1"
	repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "access-token")
		w.WriteHeader(http.StatusCreated)
	})

	err := repo.AppendEvent(context.Background(), models.Event{
		Type:         models.EventShareClick,
		UserID:       &userID,
		OccurredAt:   time.Now(),
		SessionToken: "access-token",
	})
	assert.NoError(t, err)
}

func TestRemoteEventRepository_AppendEventWithoutUser(t *testing.T) {
	repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Contains(t, rows[0], "user_id")
		assert.Nil(t, rows[0]["user_id"])
		assert.NotContains(t, rows[0], "payload")
		w.WriteHeader(http.StatusCreated)
	})

	err := repo.AppendEvent(context.Background(), models.Event{Type: models.EventQuizStart, OccurredAt: time.Now()})
	assert.NoError(t, err)
}

func TestRemoteEventRepository_EventsSince(t *testing.T) {
	since := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("parses rows", func(t *testing.T) {
		repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "occurred_at,type", r.URL.Query().Get("select"))
			assert.Equal(t, "gte.2025-05-01T00:00:00Z", r.URL.Query().Get("occurred_at"))
			if r.URL.Query().Get("offset") != "0" {
				_, _ = w.Write([]byte(`[]`))
				return
			}

			_, _ = w.Write([]byte(`[
				{"occurred_at": "2025-05-02T10:00:00.123456+00:00", "type": "quiz_complete"},
				{"occurred_at": "2025-05-03T23:30:00+09:00", "type": "share_click"}
			]`))
		})

		rows, err := repo.EventsSince(context.Background(), since)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "quiz_complete", rows[0].Type)
		assert.Equal(t, "2025-05-03", rows[1].OccurredAt.UTC().Format(models.DayLayout))
	})

	t.Run("pages past a server row cap", func(t *testing.T) {
		const total, rowCap = 7, 3
		var requests int
		repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
			q := r.URL.Query()
			assert.Equal(t, "1000", q.Get("limit"))
			assert.Equal(t, "occurred_at.asc,id.asc", q.Get("order"))
			offset, err := strconv.Atoi(q.Get("offset"))
			require.NoError(t, err)

			rows := []map[string]string{}
			for i := offset; i < total && len(rows) < rowCap; i++ {
				rows = append(rows, map[string]string{
					"occurred_at": since.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
					"type":        models.EventQuizComplete,
				})
			}
			require.NoError(t, json.NewEncoder(w).Encode(rows))
		})

		rows, err := repo.EventsSince(context.Background(), since)
		require.NoError(t, err)
		assert.Len(t, rows, total)
		assert.Equal(t, 4, requests)
		assert.True(t, rows[total-1].OccurredAt.Equal(since.Add(6*time.Hour)))
	})

	t.Run("bad timestamp", func(t *testing.T) {
		repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"occurred_at": "yesterday", "type": "quiz_complete"}]`))
		})

		_, err := repo.EventsSince(context.Background(), since)
		assert.ErrorContains(t, err, "parse occurred_at")
	})

	t.Run("error status", func(t *testing.T) {
		repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "permission denied", http.StatusUnauthorized)
		})

		_, err := repo.EventsSince(context.Background(), since)
		assert.ErrorIs(t, err, ErrRemoteStatus)
		assert.ErrorContains(t, err, "401")
	})
}

func TestRemoteEventRepository_DailyStats(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, statsRPCPath, r.URL.Path)
			_, _ = w.Write([]byte(`[
				{"day": "2025-05-01", "quiz_complete": 3, "share_click": 1, "purchase_success": 0},
				{"day": "2025-05-02", "quiz_complete": 0, "share_click": 0, "purchase_success": 2}
			]`))
		})

		rows, err := repo.DailyStats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []models.DailyAggregate{
			{Day: "2025-05-01", QuizComplete: 3, ShareClick: 1},
			{Day: "2025-05-02", PurchaseSuccess: 2},
		}, rows)
	})

	t.Run("missing rpc", func(t *testing.T) {
		repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		_, err := repo.DailyStats(context.Background())
		assert.ErrorIs(t, err, ErrRemoteStatus)
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		repo := NewRemoteEventRepository(srv.URL, "anon-key")
		srv.Close()

		_, err := repo.DailyStats(context.Background())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrRemoteStatus)
	})
}

func TestRemoteEventRepository_Sessions(t *testing.T) {
	repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case signupPath:
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"access_token": "tok-1", "user": {"id": "user-1"}}`))
		case currentUserPath:
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				http.Error(w, `{"msg":"invalid JWT"}`, http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id": "user-1"}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	created, err := repo.CreateAnonymousSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Session{UserID: "user-1", Token: "tok-1"}, created)

	current, err := repo.CurrentSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, created, current)

	_, err = repo.CurrentSession(ctx, "expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = repo.CurrentSession(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRemoteEventRepository_SignupWithoutSession(t *testing.T) {
	repo := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user": null}`))
	})

	_, err := repo.CreateAnonymousSession(context.Background())
	assert.ErrorContains(t, err, "no session")
}
