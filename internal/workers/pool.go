package workers

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/sqlchat/internal/kafka"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/models"
)

type Handler func(context.Context, *models.QuestionMessage) error

// MessageReader is the part of a Kafka reader the pool uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	RunWithReaders(ctx, workerCount, func() MessageReader {
		return kafka.NewReader(brokers, topic, group)
	}, handler)
}

// RunWithReaders starts workerCount consumers, each with its own reader,
// and blocks until ctx is done.
func RunWithReaders(ctx context.Context, workerCount int, newReader func() MessageReader, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			reader := newReader()
			defer reader.Close()
			consume(ctx, reader, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
}

func consume(ctx context.Context, reader MessageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("worker read error: %v", err)
			continue
		}

		var question models.QuestionMessage
		if err := json.Unmarshal(msg.Value, &question); err != nil {
			logging.Errorf("worker unmarshal error: %v", err)
			continue
		}
		if question.ID == "" {
			question.ID = string(msg.Key)
		}

		if handler != nil {
			if err := handler(ctx, &question); err != nil {
				logging.Errorf("worker handler error: %v", err)
			}
		}
	}
}
