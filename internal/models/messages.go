package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionMessage is the payload placed on the questions topic.
type QuestionMessage struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AnswerMessage is the payload placed on the answers topic.
type AnswerMessage struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Failed     bool      `json:"failed"`
	Source     string    `json:"source"`
	AnsweredAt time.Time `json:"answered_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`
}

// NewQuestion assigns an ID and a submission time.
func NewQuestion(question string, submittedAt time.Time) QuestionMessage {
	return QuestionMessage{
		ID:          uuid.NewString(),
		Question:    strings.TrimSpace(question),
		SubmittedAt: submittedAt.UTC(),
	}
}
