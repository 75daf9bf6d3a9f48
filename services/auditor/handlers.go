package main

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/kacperborowieckb/gen-csv/shared/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// auditor logs every generated dataset and keeps running totals.
type auditor struct {
	generated atomic.Int64
	malformed atomic.Int64
}

func (a *auditor) handleDatasetGenerated(d amqp.Delivery) error {
	event, err := messaging.DecodeDatasetGenerated(d.Body)
	if err != nil {
		log.Printf("Dropping message with routing key %s: %v", d.RoutingKey, err)
		return err
	}

	if event.GenerationID == "" {
		return fmt.Errorf("event has no generation id")
	}

	total := a.generated.Add(1)
	malformed := a.malformed.Load()
	if !event.WellFormed {
		malformed = a.malformed.Add(1)
	}

	source := "description"
	if len(event.Columns) > 0 {
		source = "columns " + strings.Join(event.Columns, ", ")
	}

	log.Printf("Dataset %s: model=%s prompt=%s rows=%d bytes=%d from %s (well-formed: %v, totals: %d generated, %d malformed)",
		event.GenerationID, event.Model, event.PromptVersion, event.Rows, event.CSVBytes, source, event.WellFormed, total, malformed)

	return nil
}
