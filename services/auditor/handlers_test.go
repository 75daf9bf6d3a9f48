package main

import (
	"encoding/json"
	"testing"

	"github.com/kacperborowieckb/gen-csv/shared/contracts"
	"github.com/kacperborowieckb/gen-csv/shared/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

func delivery(t *testing.T, event messaging.DatasetGeneratedEvent) amqp.Delivery {
	t.Helper()

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	body, err := json.Marshal(contracts.AmqpMessage{OwnerId: event.GenerationID, Data: data})
	if err != nil {
		t.Fatal(err)
	}

	return amqp.Delivery{RoutingKey: contracts.DatasetGeneratedRoutingKey, Body: body}
}

func TestHandleDatasetGenerated(t *testing.T) {
	a := &auditor{}

	events := []messaging.DatasetGeneratedEvent{
		{GenerationID: "g-1", Model: "gemini-2.5-flash", Columns: []string{"name", "age"}, Rows: 20, WellFormed: true},
		{GenerationID: "g-2", Model: "gemini-2.5-flash", Description: "pets", Rows: 17},
	}
	for _, ev := range events {
		if err := a.handleDatasetGenerated(delivery(t, ev)); err != nil {
			t.Fatalf("handleDatasetGenerated(%s) error = %v", ev.GenerationID, err)
		}
	}

	if a.generated.Load() != 2 || a.malformed.Load() != 1 {
		t.Errorf("totals = %d generated, %d malformed", a.generated.Load(), a.malformed.Load())
	}
}

func TestHandleDatasetGeneratedRejectsBadMessages(t *testing.T) {
	a := &auditor{}

	if err := a.handleDatasetGenerated(amqp.Delivery{Body: []byte("not json")}); err == nil {
		t.Error("garbage body should be rejected")
	}
	if err := a.handleDatasetGenerated(delivery(t, messaging.DatasetGeneratedEvent{})); err == nil {
		t.Error("event without generation id should be rejected")
	}
	if a.generated.Load() != 0 {
		t.Errorf("generated = %d, want 0", a.generated.Load())
	}
}
