package quiz

import (
	"fmt"
	"time"
)

const minCompletionMinutes = 0.1

// Progress is the state of one quiz run. Transitions return a new value and
// leave the receiver untouched.
type Progress struct {
	Index     int       `json:"index"`
	Answers   Answers   `json:"answers"`
	StartedAt time.Time `json:"started_at"`
	Completed bool      `json:"completed"`
}

// Completion is produced when the final question is submitted.
type Completion struct {
	Result  Result
	Answers Answers
	Minutes float64
}

// NewProgress starts a run at the first question.
func NewProgress(now time.Time) Progress {
	return Progress{
		Index:     0,
		Answers:   Answers{},
		StartedAt: now,
	}
}

func (p Progress) clone() Progress {
	answers := make(Answers, len(p.Answers))
	for id, v := range p.Answers {
		answers[id] = v
	}
	p.Answers = answers
	return p
}

// Current returns the question awaiting an answer.
func (p Progress) Current(bank *Bank) (Question, bool) {
	if p.Completed {
		return Question{}, false
	}
	return bank.Question(p.Index)
}

// Answer records value for the current question. Changing an answer before
// advancing is allowed.
func (p Progress) Answer(bank *Bank, value int) (Progress, error) {
	if p.Completed {
		return p, ErrQuizCompleted
	}
	if value < MinResponse || value > MaxResponse {
		return p, fmt.Errorf("%w: %d", ErrInvalidResponse, value)
	}
	q, ok := bank.Question(p.Index)
	if !ok {
		return p, fmt.Errorf("no question at index %d", p.Index)
	}

	next := p.clone()
	next.Answers[q.ID] = value
	return next, nil
}

// Advance moves to the next question, or completes the run when the current
// question is the last one.
func (p Progress) Advance(bank *Bank, now time.Time) (Progress, *Completion, error) {
	if p.Completed {
		return p, nil, ErrQuizCompleted
	}
	q, ok := bank.Question(p.Index)
	if !ok {
		return p, nil, fmt.Errorf("no question at index %d", p.Index)
	}
	if _, answered := p.Answers[q.ID]; !answered {
		return p, nil, ErrUnanswered
	}

	next := p.clone()
	if p.Index < bank.Len()-1 {
		next.Index++
		return next, nil, nil
	}

	next.Completed = true
	return next, &Completion{
		Result:  Score(bank, next.Answers),
		Answers: next.Answers,
		Minutes: ElapsedMinutes(p.StartedAt, now),
	}, nil
}

// ElapsedMinutes is the time spent on a run, never less than 0.1.
func ElapsedMinutes(start, end time.Time) float64 {
	return max(minCompletionMinutes, end.Sub(start).Minutes())
}
