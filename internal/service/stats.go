package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
	"go.uber.org/zap"
)

const (
	dbTimeout = 5 * time.Second

	// StatsWindowDays is the length of the admin time series, today included.
	StatsWindowDays = 7
)

var (
	ErrStatsUnavailable = errors.New("stats unavailable")
	errMalformedStats   = errors.New("malformed precomputed stats")
)

// StatsService builds the seven-day admin series.
type StatsService struct {
	store  EventStore
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(store EventStore, logger *zap.Logger) *StatsService {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &StatsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// LastSevenDays returns one aggregate per UTC day, oldest first. The
// backend's precomputed series is preferred; if it fails, raw events are
// folded locally. Only a failure of both is returned.
func (s *StatsService) LastSevenDays(ctx context.Context) ([]models.DailyAggregate, error) {
	rows, err := s.precomputed(ctx)
	if err == nil {
		return rows, nil
	}
	s.logger.Warn("precomputed stats failed, falling back to event fold", zap.Error(err))

	now := s.now()
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	events, err := s.store.EventsSince(dbCtx, now.Add(-StatsWindowDays*24*time.Hour))
	if err != nil {
		s.logger.Error("event fold fallback failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStatsUnavailable, err)
	}

	out := FoldDaily(now, events)
	s.logger.Info("stats folded from events",
		zap.Int("events", len(events)),
		zap.String("from", out[0].Day),
		zap.String("to", out[len(out)-1].Day))
	return out, nil
}

func (s *StatsService) precomputed(ctx context.Context) ([]models.DailyAggregate, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.store.DailyStats(dbCtx)
	if err != nil {
		return nil, err
	}
	if len(rows) != StatsWindowDays {
		return nil, fmt.Errorf("%w: got %d days", errMalformedStats, len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Day >= rows[i].Day {
			return nil, fmt.Errorf("%w: %q not before %q", errMalformedStats, rows[i-1].Day, rows[i].Day)
		}
	}
	return rows, nil
}

// WindowDays returns the UTC day keys of the window ending at now, oldest
// first.
func WindowDays(now time.Time) []string {
	days := make([]string, 0, StatsWindowDays)
	for i := StatsWindowDays - 1; i >= 0; i-- {
		days = append(days, now.Add(-time.Duration(i)*24*time.Hour).UTC().Format(models.DayLayout))
	}
	return days
}

// FoldDaily counts tracked events into the window ending at now. Events of
// other types or outside the window are ignored.
func FoldDaily(now time.Time, events []models.EventRecord) []models.DailyAggregate {
	days := WindowDays(now)
	buckets := make(map[string]*models.DailyAggregate, len(days))
	out := make([]models.DailyAggregate, len(days))
	for i, day := range days {
		out[i].Day = day
		buckets[day] = &out[i]
	}

	for _, e := range events {
		if !IsTracked(e.Type) {
			continue
		}
		b, ok := buckets[e.OccurredAt.UTC().Format(models.DayLayout)]
		if !ok {
			continue
		}
		switch e.Type {
		case models.EventQuizComplete:
			b.QuizComplete++
		case models.EventShareClick:
			b.ShareClick++
		case models.EventPurchaseSuccess:
			b.PurchaseSuccess++
		}
	}
	return out
}
