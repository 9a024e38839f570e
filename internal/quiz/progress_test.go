package quiz

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProgress walks the answer-and-advance transitions
func TestProgress(t *testing.T) {
	bank := DefaultBank()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("full run completes with a result", func(t *testing.T) {
		p := NewProgress(start)
		var done *Completion
		var err error

		for i := 0; i < bank.Len(); i++ {
			assert.Equal(t, i, p.Index)
			q, ok := p.Current(bank)
			require.True(t, ok)
			assert.Equal(t, i+1, q.ID)

			p, err = p.Answer(bank, 5)
			require.NoError(t, err)
			p, done, err = p.Advance(bank, start.Add(3*time.Minute))
			require.NoError(t, err)
			if i < bank.Len()-1 {
				assert.Nil(t, done)
			}
		}

		require.NotNil(t, done)
		assert.True(t, p.Completed)
		assert.Equal(t, TypeELA, done.Result.Type)
		assert.Len(t, done.Answers, bank.Len())
		assert.InDelta(t, 3.0, done.Minutes, 1e-9)

		_, ok := p.Current(bank)
		assert.False(t, ok)
	})

	t.Run("transitions do not mutate the receiver", func(t *testing.T) {
		p := NewProgress(start)
		answered, err := p.Answer(bank, 3)
		require.NoError(t, err)

		assert.Empty(t, p.Answers)
		assert.Equal(t, 3, answered.Answers[1])

		advanced, _, err := answered.Advance(bank, start)
		require.NoError(t, err)
		assert.Equal(t, 0, answered.Index)
		assert.Equal(t, 1, advanced.Index)
	})

	t.Run("answer can be changed before advancing", func(t *testing.T) {
		p, err := NewProgress(start).Answer(bank, 2)
		require.NoError(t, err)
		p, err = p.Answer(bank, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, p.Answers[1])
	})

	t.Run("advance without answer", func(t *testing.T) {
		p := NewProgress(start)
		next, done, err := p.Advance(bank, start)

		assert.ErrorIs(t, err, ErrUnanswered)
		assert.Nil(t, done)
		assert.Equal(t, p, next)
	})

	t.Run("invalid response", func(t *testing.T) {
		for _, v := range []int{0, 6, -1} {
			_, err := NewProgress(start).Answer(bank, v)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		}
	})

	t.Run("completed run rejects further input", func(t *testing.T) {
		p := Progress{Index: bank.Len() - 1, Answers: Answers{}, StartedAt: start, Completed: true}

		_, err := p.Answer(bank, 3)
		assert.ErrorIs(t, err, ErrQuizCompleted)
		_, _, err = p.Advance(bank, start)
		assert.ErrorIs(t, err, ErrQuizCompleted)
	})

	t.Run("survives a json round trip", func(t *testing.T) {
		p, err := NewProgress(start).Answer(bank, 4)
		require.NoError(t, err)

		data, err := json.Marshal(p)
		require.NoError(t, err)
		var decoded Progress
		require.NoError(t, json.Unmarshal(data, &decoded))

		assert.Equal(t, p.Answers, decoded.Answers)
		assert.True(t, p.StartedAt.Equal(decoded.StartedAt))
	})
}

func TestElapsedMinutes(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.1, ElapsedMinutes(start, start))
	assert.Equal(t, 0.1, ElapsedMinutes(start, start.Add(-time.Hour)))
	assert.InDelta(t, 1.5, ElapsedMinutes(start, start.Add(90*time.Second)), 1e-9)
}
