package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/kafka"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/models"
	"github.com/hetulpatel/sqlchat/internal/qa"
	"github.com/hetulpatel/sqlchat/internal/queue"
	"github.com/hetulpatel/sqlchat/internal/workers"
)

func main() {
	cfg := config.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brokers := kafka.Brokers()
	questionTopic := kafka.TopicFromEnv("QUESTIONS_KAFKA_TOPIC", kafka.DefaultQuestionTopic)
	answerTopic := kafka.TopicFromEnv("ANSWERS_KAFKA_TOPIC", kafka.DefaultAnswerTopic)
	group := config.EnvString("QUERY_WORKER_GROUP", "query-workers")
	workerCount := config.EnvInt("QUERY_WORKERS", 1)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[query-worker] wait for broker: %v", err)
	}
	cancel()

	for _, topic := range []string{questionTopic, answerTopic} {
		ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
			logging.Warnf("[query-worker] ensure topic %s warning: %v", topic, err)
		}
		cancelEnsure()
	}

	writer := kafka.NewWriter(brokers, answerTopic)
	defer writer.Close()

	svc, cleanup, err := qa.Setup(cfg, "worker", nil)
	if err != nil {
		logging.Fatalf("[query-worker] setup: %v", err)
	}
	defer cleanup()

	processor := workers.NewProcessor(svc, queue.NewAnswerPublisher(writer), qa.IsFailure)

	logging.Infof("[query-worker] consuming %s with group %s (%d workers)", questionTopic, group, workerCount)
	workers.Run(ctx, brokers, questionTopic, group, workerCount, func(ctx context.Context, msg *models.QuestionMessage) error {
		if err := processor.Handle(ctx, msg); err != nil {
			return err
		}
		logging.Infof("[query-worker] answered question=%s", msg.ID)
		return nil
	})
}
