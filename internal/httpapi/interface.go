package httpapi

import (
	"context"
	"time"

	"github.com/godilite/mind-compass/internal/quiz"
	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/godilite/mind-compass/internal/service"
)

// QuizService is the quiz flow the handlers drive.
type QuizService interface {
	Bank() *quiz.Bank
	Session(ctx context.Context, token string) *models.Session
	Start(ctx context.Context, token string) (*models.Session, quiz.Progress)
	Step(ctx context.Context, session *models.Session, progress quiz.Progress, value int) (quiz.Progress, *service.Outcome, error)
	Track(ctx context.Context, session *models.Session, eventType string, payload any) error
	Describe(code string) (quiz.Profile, error)
}

type StatsService interface {
	LastSevenDays(ctx context.Context) ([]models.DailyAggregate, error)
}

// ProgressStore keeps in-flight quiz runs between requests. Get returns
// redis.Nil for unknown keys.
type ProgressStore interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
