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
	"github.com/hetulpatel/sqlchat/internal/qa"
	"github.com/hetulpatel/sqlchat/internal/queue"
	"github.com/hetulpatel/sqlchat/internal/web"
)

func main() {
	cfg := config.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, closeRecorder := answerRecorder(ctx)
	defer closeRecorder()

	svc, cleanup, err := qa.Setup(cfg, "web", recorder)
	if err != nil {
		logging.Fatalf("[frontend] setup: %v", err)
	}
	defer cleanup()

	server, err := web.NewServer(web.Config{Addr: cfg.HTTPAddr, Facade: svc})
	if err != nil {
		logging.Fatalf("[frontend] %v", err)
	}
	if err := server.Serve(ctx); err != nil {
		logging.Fatalf("[frontend] %v", err)
	}
}

// answerRecorder publishes answers to Kafka when KAFKA_BROKERS is set.
func answerRecorder(ctx context.Context) (qa.Recorder, func()) {
	brokers := kafka.ConfiguredBrokers()
	if brokers == nil {
		return nil, func() {}
	}
	topic := kafka.TopicFromEnv("ANSWERS_KAFKA_TOPIC", kafka.DefaultAnswerTopic)

	ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Warnf("[frontend] ensure topic warning: %v", err)
	}
	cancel()

	writer := kafka.NewWriter(brokers, topic)
	logging.Infof("[frontend] publishing answers to %s", topic)
	return queue.NewAnswerPublisher(writer), func() { _ = writer.Close() }
}
