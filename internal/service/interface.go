package service

import (
	"context"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
)

// EventStore defines the event sink operations the services rely on.
type EventStore interface {
	AppendEvent(ctx context.Context, e models.Event) error
	EventsSince(ctx context.Context, since time.Time) ([]models.EventRecord, error)
	DailyStats(ctx context.Context) ([]models.DailyAggregate, error)
}

// IdentityProvider issues and resolves anonymous sessions.
type IdentityProvider interface {
	CurrentSession(ctx context.Context, token string) (models.Session, error)
	CreateAnonymousSession(ctx context.Context) (models.Session, error)
}

// Backend is implemented by every configured sink.
type Backend interface {
	EventStore
	IdentityProvider
}
