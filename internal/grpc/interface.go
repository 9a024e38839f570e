package grpc

import (
	"context"
	"time"

	"github.com/godilite/mind-compass/internal/quiz"
	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/godilite/mind-compass/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type QuizService interface {
	Bank() *quiz.Bank
	Session(ctx context.Context, token string) *models.Session
	Evaluate(ctx context.Context, session *models.Session, answers quiz.Answers, startedAt time.Time) service.Outcome
	Track(ctx context.Context, session *models.Session, eventType string, payload any) error
}

type StatsService interface {
	LastSevenDays(ctx context.Context) ([]models.DailyAggregate, error)
}
