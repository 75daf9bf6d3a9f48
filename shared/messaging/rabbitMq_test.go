package messaging

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/kacperborowieckb/gen-csv/shared/contracts"
)

func TestDatasetGeneratedMessageDecodes(t *testing.T) {
	event := DatasetGeneratedEvent{
		GenerationID:  "3f1c2a9e-7d44-4b8e-9a51-0c6d2e8f1b27",
		Model:         "gemini-2.5-flash",
		PromptVersion: "2025-01",
		Columns:       []string{"name", "age", "city"},
		Description:   "customers of an online store in Europe",
		Rows:          20,
		CSVBytes:      512,
		WellFormed:    true,
		GeneratedAt:   time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	msg, err := newDatasetGeneratedMessage(event)
	if err != nil {
		t.Fatalf("newDatasetGeneratedMessage() error = %v", err)
	}
	if msg.OwnerId != event.GenerationID {
		t.Errorf("OwnerId = %q, want %q", msg.OwnerId, event.GenerationID)
	}

	// PublishMessage sends the envelope as JSON.
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeDatasetGenerated(body)
	if err != nil {
		t.Fatalf("DecodeDatasetGenerated() error = %v", err)
	}
	if !got.GeneratedAt.Equal(event.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, event.GeneratedAt)
	}
	got.GeneratedAt = event.GeneratedAt
	if !reflect.DeepEqual(got, event) {
		t.Errorf("DecodeDatasetGenerated() = %+v, want %+v", got, event)
	}
}

func TestDecodeDatasetGeneratedRejectsBadPayload(t *testing.T) {
	body, err := json.Marshal(contracts.AmqpMessage{OwnerId: "id", Data: []byte("not json")})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeDatasetGenerated(body); err == nil {
		t.Error("DecodeDatasetGenerated() should fail on a non-JSON event")
	}
	if _, err := DecodeDatasetGenerated([]byte("{")); err == nil {
		t.Error("DecodeDatasetGenerated() should fail on a broken envelope")
	}
}
