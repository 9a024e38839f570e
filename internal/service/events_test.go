package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/godilite/mind-compass/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEventLogger(t *testing.T) {
	t.Run("nil store panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewEventLogger(nil, zap.NewNop(), time.Second)
		})
	})

	t.Run("non-positive timeout uses default", func(t *testing.T) {
		l := NewEventLogger(&mocks.MockBackend{}, nil, 0)
		assert.Equal(t, defaultWriteTimeout, l.timeout)
	})
}

// TestEventLogger_Log tests the fire-and-forget write path
func TestEventLogger_Log(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.FixedZone("KST", 9*3600))

	t.Run("stamps and appends the event", func(t *testing.T) {
		store := &mocks.MockBackend{}
		l := NewEventLogger(store, zap.NewNop(), time.Second)
		l.now = func() time.Time { return fixed }

		minutes := 1.25
		l.Log(&models.Session{UserID: "user-1", Token: "tok-1"}, models.EventQuizComplete, map[string]string{"typeKey": "ELA"}, &minutes)
		require.NoError(t, l.Wait(context.Background()))

		events := store.Appended()
		require.Len(t, events, 1)
		e := events[0]
		assert.Equal(t, models.EventQuizComplete, e.Type)
		assert.JSONEq(t, `{"typeKey":"ELA"}`, string(e.Payload))
		require.NotNil(t, e.Minutes)
		assert.Equal(t, 1.25, *e.Minutes)
		require.NotNil(t, e.UserID)
		assert.Equal(t, "user-1", *e.UserID)
		assert.Equal(t, "tok-1", e.SessionToken)
		assert.True(t, e.OccurredAt.Equal(fixed))
		assert.Equal(t, time.UTC, e.OccurredAt.Location())
	})

	t.Run("nil session records no user", func(t *testing.T) {
		store := &mocks.MockBackend{}
		l := NewEventLogger(store, zap.NewNop(), time.Second)

		l.Log(nil, models.EventQuizStart, nil, nil)
		require.NoError(t, l.Wait(context.Background()))

		events := store.Appended()
		require.Len(t, events, 1)
		assert.Nil(t, events[0].UserID)
		assert.Nil(t, events[0].Payload)
		assert.Nil(t, events[0].Minutes)
	})

	t.Run("write failure is logged and dropped", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		store := &mocks.MockBackend{
			AppendEventFunc: func(ctx context.Context, e models.Event) error {
				return errors.New("insert denied")
			},
		}
		l := NewEventLogger(store, zap.New(core), time.Second)

		assert.NotPanics(t, func() {
			l.Log(nil, models.EventShareClick, nil, nil)
		})
		require.NoError(t, l.Wait(context.Background()))

		assert.Empty(t, store.Appended())
		assert.Equal(t, 1, logs.FilterMessage("event write failed").Len())
	})

	t.Run("caller does not wait for slow writes", func(t *testing.T) {
		release := make(chan struct{})
		store := &mocks.MockBackend{
			AppendEventFunc: func(ctx context.Context, e models.Event) error {
				<-release
				return nil
			},
		}
		l := NewEventLogger(store, zap.NewNop(), time.Second)

		returned := make(chan struct{})
		go func() {
			l.Log(nil, models.EventShareClick, nil, nil)
			close(returned)
		}()

		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("Log blocked on the store")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)

		close(release)
		require.NoError(t, l.Wait(context.Background()))
		assert.Len(t, store.Appended(), 1)
	})

	t.Run("events after close are dropped", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		store := &mocks.MockBackend{}
		l := NewEventLogger(store, zap.New(core), time.Second)

		l.Log(nil, models.EventQuizStart, nil, nil)
		require.NoError(t, l.Close(context.Background()))
		l.Log(nil, models.EventShareClick, nil, nil)
		require.NoError(t, l.Wait(context.Background()))

		events := store.Appended()
		require.Len(t, events, 1)
		assert.Equal(t, models.EventQuizStart, events[0].Type)
		assert.Equal(t, 1, logs.FilterMessage("event dropped after shutdown").Len())
	})

	t.Run("close races with concurrent logging", func(t *testing.T) {
		store := &mocks.MockBackend{}
		l := NewEventLogger(store, zap.NewNop(), time.Second)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.Log(nil, models.EventShareClick, nil, nil)
			}()
		}
		require.NoError(t, l.Close(context.Background()))
		wg.Wait()
		require.NoError(t, l.Wait(context.Background()))

		assert.LessOrEqual(t, len(store.Appended()), 50)
	})

	t.Run("unencodable payload is dropped but the event is kept", func(t *testing.T) {
		store := &mocks.MockBackend{}
		l := NewEventLogger(store, zap.NewNop(), time.Second)

		l.Log(nil, models.EventShareClick, map[string]any{"bad": make(chan int)}, nil)
		require.NoError(t, l.Wait(context.Background()))

		events := store.Appended()
		require.Len(t, events, 1)
		assert.Nil(t, events[0].Payload)
	})
}
