package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_WritesOneMessagePerActivity(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewPublisher(writer)
	saleID := int64(12)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(), []domain.Activity{
		{CorrelationID: "c-1", UserID: 7, Action: "SALE_CREATED", EntityType: "sale", EntityID: &saleID, Details: map[string]any{"total": "60.00"}, Timestamp: at},
		{CorrelationID: "c-2", UserID: 8, Action: "SALE_VIEWED", Timestamp: at},
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 2)

	first := writer.messages[0]
	assert.Equal(t, "7", string(first.Key))
	assert.Equal(t, at, first.Time)
	assert.Contains(t, first.Headers, kafka.Header{Key: "action", Value: []byte("SALE_CREATED")})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first.Value, &decoded))
	assert.Equal(t, "c-1", decoded["correlationId"])
	assert.Equal(t, "SALE_CREATED", decoded["action"])
	assert.EqualValues(t, 12, decoded["entityId"])
	assert.Equal(t, map[string]any{"total": "60.00"}, decoded["details"])

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestPublisher_PropagatesWriteErrors(t *testing.T) {
	publisher := NewPublisher(&fakeWriter{err: errors.New("leader not available")})
	err := publisher.Publish(context.Background(), []domain.Activity{{UserID: 1, Action: "USER_CREATED"}})
	require.EqualError(t, err, "leader not available")

	require.NoError(t, publisher.Publish(context.Background(), nil))
}
