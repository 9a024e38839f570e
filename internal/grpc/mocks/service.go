package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/mind-compass/internal/quiz"
	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/godilite/mind-compass/internal/service"
)

// MockQuizService is a function-based mock of the QuizService interface.
type MockQuizService struct {
	BankFunc     func() *quiz.Bank
	SessionFunc  func(ctx context.Context, token string) *models.Session
	EvaluateFunc func(ctx context.Context, session *models.Session, answers quiz.Answers, startedAt time.Time) service.Outcome
	TrackFunc    func(ctx context.Context, session *models.Session, eventType string, payload any) error
}

// Bank implements the QuizService interface
func (m *MockQuizService) Bank() *quiz.Bank {
	if m.BankFunc != nil {
		return m.BankFunc()
	}
	return quiz.DefaultBank()
}

// Session implements the QuizService interface
func (m *MockQuizService) Session(ctx context.Context, token string) *models.Session {
	if m.SessionFunc != nil {
		return m.SessionFunc(ctx, token)
	}
	return nil
}

// Evaluate implements the QuizService interface
func (m *MockQuizService) Evaluate(ctx context.Context, session *models.Session, answers quiz.Answers, startedAt time.Time) service.Outcome {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, session, answers, startedAt)
	}
	return service.Outcome{}
}

// Track implements the QuizService interface
func (m *MockQuizService) Track(ctx context.Context, session *models.Session, eventType string, payload any) error {
	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, session, eventType, payload)
	}
	return errors.New("TrackFunc not implemented")
}

// MockStatsService is a function-based mock of the StatsService interface.
type MockStatsService struct {
	LastSevenDaysFunc func(ctx context.Context) ([]models.DailyAggregate, error)
}

// LastSevenDays implements the StatsService interface
func (m *MockStatsService) LastSevenDays(ctx context.Context) ([]models.DailyAggregate, error) {
	if m.LastSevenDaysFunc != nil {
		return m.LastSevenDaysFunc(ctx)
	}
	return nil, errors.New("LastSevenDaysFunc not implemented")
}
