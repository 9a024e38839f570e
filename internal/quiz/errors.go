package quiz

import "errors"

var (
	ErrUnknownType     = errors.New("unknown type key")
	ErrInvalidResponse = errors.New("response out of range")
	ErrUnanswered      = errors.New("current question has no answer")
	ErrQuizCompleted   = errors.New("quiz already completed")
)
