package service

import "github.com/godilite/mind-compass/internal/quiz"

// Outcome is a scored quiz together with everything a result card shows.
type Outcome struct {
	Type         quiz.TypeKey         `json:"type_key"`
	Scores       quiz.NormalizedScore `json:"scores"`
	Profile      quiz.Profile         `json:"profile"`
	BestMatch    quiz.Profile         `json:"best_match"`
	Minutes      float64              `json:"minutes"`
	ShareCaption string               `json:"share_caption"`
	CardFileName string               `json:"card_file_name"`
}

type completionPayload struct {
	TypeKey quiz.TypeKey         `json:"typeKey"`
	Scores  quiz.NormalizedScore `json:"scores"`
	Answers quiz.Answers         `json:"answers"`
}
