package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/google/uuid"
)

// timestampLayout is fixed width and always UTC so stored timestamps compare
// correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var ErrSessionNotFound = errors.New("session not found")

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		payload TEXT,
		minutes REAL,
		user_id TEXT,
		occurred_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events (occurred_at);
`

// EventRepository is the self-hosted event store and identity provider
// backed by database/sql.
type EventRepository struct {
	db  *sql.DB
	now func() time.Time
}

type EventRepositoryOption func(*EventRepository)

// WithClock overrides the clock used for "today" and session timestamps.
func WithClock(now func() time.Time) EventRepositoryOption {
	return func(r *EventRepository) { r.now = now }
}

func NewEventRepository(db *sql.DB, opts ...EventRepositoryOption) *EventRepository {
	r := &EventRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Migrate creates the tables if they do not exist yet.
func (r *EventRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate events schema: %w", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// AppendEvent inserts a single event.
func (r *EventRepository) AppendEvent(ctx context.Context, e models.Event) error {
	const query = `
		INSERT INTO events (type, payload, minutes, user_id, occurred_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var payload sql.NullString
	if len(e.Payload) > 0 {
		payload = sql.NullString{String: string(e.Payload), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, e.Type, payload, e.Minutes, e.UserID, formatTimestamp(e.OccurredAt))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// EventsSince returns the type and timestamp of every event at or after since.
func (r *EventRepository) EventsSince(ctx context.Context, since time.Time) ([]models.EventRecord, error) {
	const query = `
		SELECT occurred_at, type
		FROM events
		WHERE occurred_at >= ?
		ORDER BY occurred_at
	`

	rows, err := r.db.QueryContext(ctx, query, formatTimestamp(since))
	if err != nil {
		return nil, fmt.Errorf("query EventsSince: %w", err)
	}
	defer rows.Close()

	var results []models.EventRecord
	for rows.Next() {
		var occurredAt string
		var rec models.EventRecord
		if err := rows.Scan(&occurredAt, &rec.Type); err != nil {
			return nil, fmt.Errorf("scan EventsSince row: %w", err)
		}
		rec.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate EventsSince: %w", err)
	}
	return results, nil
}

// DailyStats counts tracked events per UTC day for the trailing seven days,
// today included, oldest first. Days without events are present with zeros.
func (r *EventRepository) DailyStats(ctx context.Context) ([]models.DailyAggregate, error) {
	const query = `
		WITH RECURSIVE days(day, n) AS (
			SELECT date(?, '-6 days'), 0
			UNION ALL
			SELECT date(day, '+1 day'), n + 1 FROM days WHERE n < 6
		)
		SELECT
			d.day,
			COUNT(CASE WHEN e.type = 'quiz_complete' THEN 1 END) AS quiz_complete,
			COUNT(CASE WHEN e.type = 'share_click' THEN 1 END) AS share_click,
			COUNT(CASE WHEN e.type = 'purchase_success' THEN 1 END) AS purchase_success
		FROM days AS d
		LEFT JOIN events AS e ON substr(e.occurred_at, 1, 10) = d.day
		GROUP BY d.day
		ORDER BY d.day
	`

	today := r.now().UTC().Format(models.DayLayout)
	rows, err := r.db.QueryContext(ctx, query, today)
	if err != nil {
		return nil, fmt.Errorf("query DailyStats: %w", err)
	}
	defer rows.Close()

	var results []models.DailyAggregate
	for rows.Next() {
		var a models.DailyAggregate
		if err := rows.Scan(&a.Day, &a.QuizComplete, &a.ShareClick, &a.PurchaseSuccess); err != nil {
			return nil, fmt.Errorf("scan DailyStats row: %w", err)
		}
		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate DailyStats: %w", err)
	}
	return results, nil
}

// CreateAnonymousSession issues a fresh user id and bearer token.
func (r *EventRepository) CreateAnonymousSession(ctx context.Context) (models.Session, error) {
	const query = `INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`

	s := models.Session{
		UserID: uuid.NewString(),
		Token:  uuid.NewString(),
	}
	if _, err := r.db.ExecContext(ctx, query, s.Token, s.UserID, formatTimestamp(r.now())); err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// CurrentSession resolves a bearer token issued by CreateAnonymousSession.
func (r *EventRepository) CurrentSession(ctx context.Context, token string) (models.Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return models.Session{}, ErrSessionNotFound
	}

	const query = `SELECT user_id FROM sessions WHERE token = ?`

	s := models.Session{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&s.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("query CurrentSession: %w", err)
	}
	return s, nil
}
