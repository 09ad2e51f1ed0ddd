package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/sqlchat/internal/models"
)

// MessageWriter is the part of *kafka.Writer the publishers use.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishQuestions writes questions keyed by their ID.
func PublishQuestions(ctx context.Context, writer MessageWriter, questions ...models.QuestionMessage) error {
	if writer == nil || len(questions) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(questions))
	for _, q := range questions {
		payload, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(q.ID), Value: payload})
	}
	return writer.WriteMessages(ctx, msgs...)
}

// AnswerPublisher writes answered questions to a topic.
type AnswerPublisher struct {
	writer MessageWriter
}

func NewAnswerPublisher(writer MessageWriter) *AnswerPublisher {
	return &AnswerPublisher{writer: writer}
}

// Record publishes one answer. A nil publisher drops it.
func (p *AnswerPublisher) Record(ctx context.Context, msg models.AnswerMessage) error {
	if p == nil || p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal answer %s: %w", msg.ID, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(msg.ID), Value: payload})
}
