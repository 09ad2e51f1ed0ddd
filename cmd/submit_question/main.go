package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hetulpatel/sqlchat/internal/kafka"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/models"
	"github.com/hetulpatel/sqlchat/internal/queue"
)

func main() {
	logging.InitFromEnv()

	question := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "usage: submit_question <question>")
		os.Exit(2)
	}

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("QUESTIONS_KAFKA_TOPIC", kafka.DefaultQuestionTopic)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := kafka.EnsureTopic(ctx, brokers, topic); err != nil {
		logging.Warnf("[submit-question] ensure topic warning: %v", err)
	}

	writer := kafka.NewWriter(brokers, topic)
	defer writer.Close()

	msg := models.NewQuestion(question, time.Now().UTC())
	if err := queue.PublishQuestions(ctx, writer, msg); err != nil {
		logging.Fatalf("[submit-question] publish: %v", err)
	}
	fmt.Println(msg.ID)
}
