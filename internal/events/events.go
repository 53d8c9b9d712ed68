// Package events publishes pipeline lifecycle events for external
// monitoring. Publishing is fire-and-forget; the pipeline never blocks or
// fails on the event path.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types emitted by the pipeline.
const (
	TypeDialogueCompleted = "dialogue.completed"
	TypeKnowledgeCreated  = "knowledge.created"
	TypeJobRun            = "job.run"
)

// Event is one pipeline lifecycle notification.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Publisher emits events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]any)
	Close() error
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(eventType string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(brokers, ",")...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish serializes and writes the event. Errors are logged and dropped.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload map[string]any) {
	evt := NewEvent(eventType, payload)
	value, err := json.Marshal(evt)
	if err != nil {
		slog.Warn("event marshal failed", "type", eventType, "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: value,
	}); err != nil {
		slog.Warn("event publish failed", "type", eventType, "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ChannelPublisher is an in-process Publisher implementation backed by a Go
// channel, used in tests.
type ChannelPublisher struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewChannelPublisher creates an in-process publisher.
func NewChannelPublisher() *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan Event, 100)}
}

// Publish pushes the event into the channel, dropping when full or after
// Close.
func (p *ChannelPublisher) Publish(ctx context.Context, eventType string, payload map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- NewEvent(eventType, payload):
	default:
	}
}

// Events returns the channel of published events.
func (p *ChannelPublisher) Events() <-chan Event { return p.ch }

// Close closes the channel. Further publishes are dropped.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.ch)
	return nil
}

// NopPublisher discards all events.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(ctx context.Context, eventType string, payload map[string]any) {}

// Close is a no-op.
func (NopPublisher) Close() error { return nil }
