package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
)

// DefaultTopic receives activity events when no topic is configured.
const DefaultTopic = "pos.activities"

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a batching writer for the activity topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireOne,
	}
}

// Publisher streams activities to Kafka, keyed by user so one user's trail
// stays ordered within a partition.
type Publisher struct {
	writer Writer
}

func NewPublisher(w Writer) *Publisher {
	return &Publisher{writer: w}
}

type event struct {
	CorrelationID string         `json:"correlationId"`
	UserID        int64          `json:"userId"`
	UserName      string         `json:"userName,omitempty"`
	UserRole      string         `json:"userRole,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entityType,omitempty"`
	EntityID      *int64         `json:"entityId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	IPAddress     string         `json:"ipAddress,omitempty"`
	UserAgent     string         `json:"userAgent,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

func (p *Publisher) Publish(ctx context.Context, entries []domain.Activity) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka activity publisher not configured")
	}
	if len(entries) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(event{
			CorrelationID: entry.CorrelationID,
			UserID:        entry.UserID,
			UserName:      entry.UserName,
			UserRole:      entry.UserRole,
			Action:        entry.Action,
			EntityType:    entry.EntityType,
			EntityID:      entry.EntityID,
			Details:       entry.Details,
			IPAddress:     entry.IPAddress,
			UserAgent:     entry.UserAgent,
			Timestamp:     entry.Timestamp.UTC(),
		})
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(entry.UserID, 10)),
			Value: payload,
			Time:  entry.Timestamp,
			Headers: []kafka.Header{
				{Key: "action", Value: []byte(entry.Action)},
				{Key: "correlation_id", Value: []byte(entry.CorrelationID)},
			},
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

var _ ports.Publisher = (*Publisher)(nil)
