package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
)

// MockBackend is a mock implementation of the service Backend interface.
// Appended events are kept so tests can inspect them.
type MockBackend struct {
	AppendEventFunc            func(ctx context.Context, e models.Event) error
	EventsSinceFunc            func(ctx context.Context, since time.Time) ([]models.EventRecord, error)
	DailyStatsFunc             func(ctx context.Context) ([]models.DailyAggregate, error)
	CurrentSessionFunc         func(ctx context.Context, token string) (models.Session, error)
	CreateAnonymousSessionFunc func(ctx context.Context) (models.Session, error)

	mu       sync.Mutex
	appended []models.Event
}

// AppendEvent implements the EventStore interface
func (m *MockBackend) AppendEvent(ctx context.Context, e models.Event) error {
	if m.AppendEventFunc != nil {
		if err := m.AppendEventFunc(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended = append(m.appended, e)
	return nil
}

// Appended returns a copy of the events accepted so far.
func (m *MockBackend) Appended() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Event, len(m.appended))
	copy(out, m.appended)
	return out
}

// EventsSince implements the EventStore interface
func (m *MockBackend) EventsSince(ctx context.Context, since time.Time) ([]models.EventRecord, error) {
	if m.EventsSinceFunc != nil {
		return m.EventsSinceFunc(ctx, since)
	}
	return nil, errors.New("EventsSinceFunc not implemented")
}

// DailyStats implements the EventStore interface
func (m *MockBackend) DailyStats(ctx context.Context) ([]models.DailyAggregate, error) {
	if m.DailyStatsFunc != nil {
		return m.DailyStatsFunc(ctx)
	}
	return nil, errors.New("DailyStatsFunc not implemented")
}

// CurrentSession implements the IdentityProvider interface
func (m *MockBackend) CurrentSession(ctx context.Context, token string) (models.Session, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx, token)
	}
	return models.Session{}, errors.New("CurrentSessionFunc not implemented")
}

// CreateAnonymousSession implements the IdentityProvider interface
func (m *MockBackend) CreateAnonymousSession(ctx context.Context) (models.Session, error) {
	if m.CreateAnonymousSessionFunc != nil {
		return m.CreateAnonymousSessionFunc(ctx)
	}
	return models.Session{}, errors.New("CreateAnonymousSessionFunc not implemented")
}
