package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"greencode-backend/internal/shared/events"
)

func TestEncodeAnalysisCompleted(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := encode(events.AnalysisCompleted{
		AnalysisID:  "a-1",
		UserID:      "user-1",
		Language:    "python",
		EnergyScore: 40,
		Rating:      "Moderate",
		Detections:  []string{"nested_loops"},
		CompletedAt: at,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["analysisId"] != "a-1" || got["language"] != "python" || got["rating"] != "Moderate" {
		t.Fatalf("unexpected payload: %s", data)
	}
	if got["completedAt"] != "2026-03-01T12:00:00Z" {
		t.Fatalf("completedAt = %v", got["completedAt"])
	}
}

func TestEncodeRejectsUnmarshalableEvent(t *testing.T) {
	if _, err := encode(map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestPingWithoutConnection(t *testing.T) {
	if err := (&NATSPublisher{}).Ping(context.Background()); err == nil {
		t.Fatalf("expected error for unconnected publisher")
	}
}
