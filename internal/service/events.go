package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 5 * time.Second

// IsTracked reports whether t is one of the event types counted in the
// admin series.
func IsTracked(t string) bool {
	switch t {
	case models.EventQuizComplete, models.EventShareClick, models.EventPurchaseSuccess:
		return true
	}
	return false
}

// EventLogger appends usage events in the background. Write failures are
// logged and dropped; callers never wait on them.
type EventLogger struct {
	store   EventStore
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	closed  bool
	pending int
	idle    chan struct{}
}

// NewEventLogger creates an EventLogger. A non-positive timeout uses the
// default.
func NewEventLogger(store EventStore, logger *zap.Logger, timeout time.Duration) *EventLogger {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &EventLogger{
		store:   store,
		logger:  logger.Named("events"),
		timeout: timeout,
		now:     time.Now,
		idle:    closedChan(),
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// begin registers a write. It reports false once the logger is closed.
func (l *EventLogger) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	if l.pending == 0 {
		l.idle = make(chan struct{})
	}
	l.pending++
	return true
}

func (l *EventLogger) done() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
	if l.pending == 0 {
		close(l.idle)
	}
}

// Log stamps the event and dispatches the write. session may be nil, in
// which case the event carries no user reference. Events logged after Close
// are dropped.
func (l *EventLogger) Log(session *models.Session, eventType string, payload any, minutes *float64) {
	e := models.Event{
		Type:       eventType,
		Minutes:    minutes,
		OccurredAt: l.now().UTC(),
	}
	if session != nil && session.UserID != "" {
		userID := session.UserID
		e.UserID = &userID
		e.SessionToken = session.Token
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			l.logger.Warn("event payload dropped", zap.String("type", eventType), zap.Error(err))
		} else {
			e.Payload = data
		}
	}

	if !l.begin() {
		l.logger.Warn("event dropped after shutdown", zap.String("type", eventType))
		return
	}

	go func() {
		defer l.done()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.store.AppendEvent(ctx, e); err != nil {
			l.logger.Warn("event write failed", zap.String("type", e.Type), zap.Error(err))
			return
		}
		l.logger.Debug("event recorded", zap.String("type", e.Type))
	}()
}

// Wait blocks until no writes are in flight or ctx is done.
func (l *EventLogger) Wait(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for in-flight writes.
func (l *EventLogger) Close(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return l.Wait(ctx)
}
