package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/mind-compass/internal/quiz"
	"github.com/godilite/mind-compass/internal/repository/models"
	"go.uber.org/zap"
)

var ErrUnknownEventType = errors.New("unknown event type")

// Identity resolves sessions for the quiz flow.
type Identity interface {
	Ensure(ctx context.Context, token string) *models.Session
}

// Recorder dispatches usage events without blocking.
type Recorder interface {
	Log(session *models.Session, eventType string, payload any, minutes *float64)
}

// QuizService drives a quiz run and records its usage events.
type QuizService struct {
	bank     *quiz.Bank
	identity Identity
	events   Recorder
	origin   string
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuizService creates a QuizService. origin is appended to share captions.
func NewQuizService(bank *quiz.Bank, identity Identity, events Recorder, origin string, logger *zap.Logger) *QuizService {
	if bank == nil {
		bank = quiz.DefaultBank()
	}
	if identity == nil || events == nil {
		panic("identity and events must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		bank:     bank,
		identity: identity,
		events:   events,
		origin:   origin,
		logger:   logger.Named("quiz"),
		now:      time.Now,
	}
}

// Bank returns the question bank the service scores against.
func (s *QuizService) Bank() *quiz.Bank {
	return s.bank
}

// Session resolves or creates the caller's anonymous session.
func (s *QuizService) Session(ctx context.Context, token string) *models.Session {
	return s.identity.Ensure(ctx, token)
}

// Start begins a new run for the caller and records quiz_start.
func (s *QuizService) Start(ctx context.Context, token string) (*models.Session, quiz.Progress) {
	session := s.identity.Ensure(ctx, token)
	progress := quiz.NewProgress(s.now())
	s.events.Log(session, models.EventQuizStart, nil, nil)
	return session, progress
}

// Step records value for the current question and advances. The outcome is
// non-nil once the last question has been answered.
func (s *QuizService) Step(ctx context.Context, session *models.Session, progress quiz.Progress, value int) (quiz.Progress, *Outcome, error) {
	answered, err := progress.Answer(s.bank, value)
	if err != nil {
		return progress, nil, err
	}

	next, done, err := answered.Advance(s.bank, s.now())
	if err != nil {
		return progress, nil, err
	}
	if done == nil {
		return next, nil, nil
	}

	outcome := s.complete(session, done.Result, done.Answers, done.Minutes)
	return next, &outcome, nil
}

// Evaluate scores a complete answer set submitted in one request. A zero
// startedAt records the minimum duration.
func (s *QuizService) Evaluate(ctx context.Context, session *models.Session, answers quiz.Answers, startedAt time.Time) Outcome {
	now := s.now()
	if startedAt.IsZero() {
		startedAt = now
	}
	result := quiz.Score(s.bank, answers)
	return s.complete(session, result, answers, quiz.ElapsedMinutes(startedAt, now))
}

func (s *QuizService) complete(session *models.Session, result quiz.Result, answers quiz.Answers, minutes float64) Outcome {
	s.events.Log(session, models.EventQuizComplete, completionPayload{
		TypeKey: result.Type,
		Scores:  result.Scores,
		Answers: answers,
	}, &minutes)

	s.logger.Info("quiz completed",
		zap.String("type", result.Type.String()),
		zap.Float64("minutes", minutes))

	profile, _ := quiz.ProfileOf(result.Type)
	match, _ := quiz.ProfileOf(profile.BestMatch)
	return Outcome{
		Type:         result.Type,
		Scores:       result.Scores,
		Profile:      profile,
		BestMatch:    match,
		Minutes:      minutes,
		ShareCaption: profile.ShareCaption(s.origin),
		CardFileName: profile.CardFileName(),
	}
}

// Track records a client-side event such as a share or a purchase.
func (s *QuizService) Track(ctx context.Context, session *models.Session, eventType string, payload any) error {
	switch eventType {
	case models.EventShareClick, models.EventShareSuccess, models.EventPurchaseSuccess:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	s.events.Log(session, eventType, payload, nil)
	return nil
}

// Describe looks up the profile for a three-letter code.
func (s *QuizService) Describe(code string) (quiz.Profile, error) {
	key, err := quiz.ParseTypeKey(code)
	if err != nil {
		return quiz.Profile{}, err
	}
	p, _ := quiz.ProfileOf(key)
	return p, nil
}
