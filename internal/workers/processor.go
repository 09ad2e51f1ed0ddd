package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hetulpatel/sqlchat/internal/models"
)

// Asker turns a question into an answer string. It never fails; failures
// come back as marked strings.
type Asker interface {
	Ask(ctx context.Context, question string) string
}

// AnswerSink receives answered questions.
type AnswerSink interface {
	Record(ctx context.Context, msg models.AnswerMessage) error
}

type Processor struct {
	asker     Asker
	sink      AnswerSink
	isFailure func(string) bool
}

func NewProcessor(asker Asker, sink AnswerSink, isFailure func(string) bool) *Processor {
	return &Processor{asker: asker, sink: sink, isFailure: isFailure}
}

func (p *Processor) Handle(ctx context.Context, msg *models.QuestionMessage) error {
	question := strings.TrimSpace(msg.Question)
	if question == "" {
		return fmt.Errorf("empty question in message %s", msg.ID)
	}

	start := time.Now()
	answer := p.asker.Ask(ctx, question)

	out := models.AnswerMessage{
		ID:         msg.ID,
		Question:   question,
		Answer:     answer,
		Source:     "worker",
		AnsweredAt: time.Now().UTC(),
		ElapsedMS:  time.Since(start).Milliseconds(),
	}
	if p.isFailure != nil {
		out.Failed = p.isFailure(answer)
	}

	if p.sink == nil {
		return nil
	}
	if err := p.sink.Record(ctx, out); err != nil {
		return fmt.Errorf("publish answer %s: %w", msg.ID, err)
	}
	return nil
}
