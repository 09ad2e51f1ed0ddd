package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	assert.Equal(t, []string{DefaultBroker}, Brokers())
	assert.Nil(t, ConfiguredBrokers())

	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	assert.Equal(t, []string{"a:9092", "b:9092"}, Brokers())
	assert.Equal(t, []string{"a:9092", "b:9092"}, ConfiguredBrokers())
}

func TestTopicFromEnv(t *testing.T) {
	t.Setenv("QUESTIONS_KAFKA_TOPIC", "")
	assert.Equal(t, DefaultQuestionTopic, TopicFromEnv("QUESTIONS_KAFKA_TOPIC", DefaultQuestionTopic))
	t.Setenv("QUESTIONS_KAFKA_TOPIC", "custom")
	assert.Equal(t, "custom", TopicFromEnv("QUESTIONS_KAFKA_TOPIC", DefaultQuestionTopic))
}

func TestWaitForBrokerRequiresBrokers(t *testing.T) {
	require.Error(t, WaitForBroker(context.Background(), nil))
	require.Error(t, EnsureTopic(context.Background(), nil, "t"))
}

func TestWaitForBrokerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	// Nothing listens on port 1.
	err := WaitForBroker(ctx, []string{"127.0.0.1:1"})
	require.Error(t, err)
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"a:9092"}, DefaultAnswerTopic)
	defer w.Close()
	assert.Equal(t, DefaultAnswerTopic, w.Topic)
}
