package events

import (
	"context"
	"testing"
)

func TestChannelPublisher(t *testing.T) {
	p := NewChannelPublisher()
	defer p.Close()

	p.Publish(context.Background(), TypeDialogueCompleted, map[string]any{"dialogue_id": int64(7)})

	select {
	case evt := <-p.Events():
		if evt.Type != TypeDialogueCompleted {
			t.Errorf("type = %q", evt.Type)
		}
		if evt.ID == "" {
			t.Error("event id empty")
		}
		if evt.Timestamp.IsZero() {
			t.Error("timestamp zero")
		}
		if evt.Payload["dialogue_id"] != int64(7) {
			t.Errorf("payload = %v", evt.Payload)
		}
	default:
		t.Fatal("no event received")
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher()
	defer p.Close()

	for i := 0; i < 150; i++ {
		p.Publish(context.Background(), TypeJobRun, nil)
	}
	// The buffer holds 100; the rest were dropped, not blocked on.
	n := 0
	for {
		select {
		case <-p.Events():
			n++
			continue
		default:
		}
		break
	}
	if n != 100 {
		t.Errorf("buffered events = %d, want 100", n)
	}
}

func TestChannelPublisherPublishAfterClose(t *testing.T) {
	p := NewChannelPublisher()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Must not panic, and must not deliver.
	p.Publish(context.Background(), TypeJobRun, nil)
	if evt, ok := <-p.Events(); ok {
		t.Errorf("event delivered after close: %+v", evt)
	}
	// Double close is also safe.
	if err := p.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	p.Publish(context.Background(), TypeKnowledgeCreated, nil)
	if err := p.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
