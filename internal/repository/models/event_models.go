package models

import (
	"encoding/json"
	"time"
)

// Event is a single usage record appended to the event store.
type Event struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Minutes    *float64        `json:"minutes,omitempty"`
	UserID     *string         `json:"user_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`

	// SessionToken authorizes the write on backends that check the caller.
	// It is never stored.
	SessionToken string `json:"-"`
}

// EventRecord is the projection read back for aggregation.
type EventRecord struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DailyAggregate holds tracked event counts for one UTC calendar day.
type DailyAggregate struct {
	Day             string `json:"day"`
	QuizComplete    int    `json:"quiz_complete"`
	ShareClick      int    `json:"share_click"`
	PurchaseSuccess int    `json:"purchase_success"`
}

// Session is an anonymous identity issued by the backend.
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

const (
	EventQuizStart       = "quiz_start"
	EventQuizComplete    = "quiz_complete"
	EventShareClick      = "share_click"
	EventShareSuccess    = "share_success"
	EventPurchaseSuccess = "purchase_success"
)

// DayLayout formats the Day field of a DailyAggregate.
const DayLayout = "2006-01-02"
