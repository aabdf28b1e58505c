package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type mockWriter struct {
	messages []kafkaGo.Message
	err      error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error { return nil }

func TestKafkaNotifier_SendEmail_Message(t *testing.T) {
	w := &mockWriter{}
	n := &KafkaNotifier{writer: w}

	err := n.SendEmail(context.Background(), 42, "Order received", "Thanks!")
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventTypeEmailRequested, string(msg.Headers[0].Value))

	var ev EmailRequested
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, int64(42), ev.MemberID)
	assert.Equal(t, "Order received", ev.Subject)
	assert.False(t, ev.RequestedAt.IsZero())
}

func TestKafkaNotifier_SendEmail_WriteError(t *testing.T) {
	n := &KafkaNotifier{writer: &mockWriter{err: errors.New("broker down")}}

	err := n.SendEmail(context.Background(), 1, "s", "b")
	assert.ErrorContains(t, err, "broker down")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.SendEmail(context.Background(), 3, "Hello", "body"))
	assert.Contains(t, buf.String(), `"member_id":3`)
	assert.Contains(t, buf.String(), `"subject":"Hello"`)
}

func TestKafkaNotifier_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	defer func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}()

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topic := "checkout-emails-test"
	n := NewKafkaNotifier(topic, brokers...)
	defer n.Close()

	require.Eventually(t, func() bool {
		return n.SendEmail(ctx, 5, "Order received", "Thanks!") == nil
	}, 30*time.Second, time.Second)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		MaxWait: time.Second,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	assert.Equal(t, "5", string(msg.Key))
}
