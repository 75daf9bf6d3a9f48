package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/kacperborowieckb/gen-csv/shared/contracts"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	SynthExchange = "synth_exchange"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		Channel: ch,
	}, nil
}

func (r *RabbitMQ) DeclareExchange(name, kind string) error {
	return r.Channel.ExchangeDeclare(
		name,  // name
		kind,  // type (e.g., "topic", "direct", "fanout")
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
}

func (r *RabbitMQ) DeclareQueue(name string) (amqp.Queue, error) {
	return r.Channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (r *RabbitMQ) BindQueue(queueName, routingKey, exchangeName string) error {
	return r.Channel.QueueBind(
		queueName,    // queue name
		routingKey,   // routing key
		exchangeName, // exchange
		false,
		nil,
	)
}

// MessageHandler is the function signature for processing a delivered message.
// Return an error to Nack (reject) the message, or nil to Ack (acknowledge) it.
type MessageHandler func(d amqp.Delivery) error

func (r *RabbitMQ) ConsumeMessages(queueName string, handler MessageHandler) error {
	msgs, err := r.Channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack (we want manual ack)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d); err != nil {
				// dropped, not requeued
				log.Printf("Failed to handle message %s: %v", d.RoutingKey, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
		log.Printf("Consumer for %s stopped", queueName)
	}()

	return nil
}

func (r *RabbitMQ) PublishMessage(ctx context.Context, exchange, routingKey string, message contracts.AmqpMessage) error {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         jsonMsg,
	}

	return r.Channel.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	)
}

// PublishDatasetGenerated wraps the event in an AmqpMessage owned by the
// generation and publishes it on the synth exchange.
func (r *RabbitMQ) PublishDatasetGenerated(ctx context.Context, event DatasetGeneratedEvent) error {
	msg, err := newDatasetGeneratedMessage(event)
	if err != nil {
		return err
	}

	log.Printf("Publishing %s for generation %s", contracts.DatasetGeneratedRoutingKey, event.GenerationID)

	return r.PublishMessage(ctx, SynthExchange, contracts.DatasetGeneratedRoutingKey, msg)
}

func newDatasetGeneratedMessage(event DatasetGeneratedEvent) (contracts.AmqpMessage, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return contracts.AmqpMessage{}, fmt.Errorf("failed to marshal DatasetGeneratedEvent: %w", err)
	}

	return contracts.AmqpMessage{
		OwnerId: event.GenerationID,
		Data:    data,
	}, nil
}

// DecodeDatasetGenerated unwraps a delivery body produced by PublishDatasetGenerated.
func DecodeDatasetGenerated(body []byte) (DatasetGeneratedEvent, error) {
	var amqpMsg contracts.AmqpMessage
	if err := json.Unmarshal(body, &amqpMsg); err != nil {
		return DatasetGeneratedEvent{}, fmt.Errorf("failed to unmarshal outer AmqpMessage: %w", err)
	}

	var event DatasetGeneratedEvent
	if err := json.Unmarshal(amqpMsg.Data, &event); err != nil {
		return DatasetGeneratedEvent{}, fmt.Errorf("failed to unmarshal inner DatasetGeneratedEvent: %w", err)
	}

	return event, nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

// SetupAppTopology declares all the exchanges, queues, and bindings
// required for the application to run.
func (r *RabbitMQ) SetupAppTopology() error {
	log.Println("Setting up RabbitMQ application topology...")

	if err := r.DeclareExchange(SynthExchange, "topic"); err != nil {
		return err
	}

	if err := r.declareAndBind(DatasetAuditQueue, SynthExchange, contracts.DatasetGeneratedRoutingKey); err != nil {
		return err
	}

	log.Println("RabbitMQ application topology setup complete.")

	return nil
}

func (r *RabbitMQ) declareAndBind(queueName, exchangeName, routingKey string) error {
	q, err := r.DeclareQueue(queueName)
	if err != nil {
		return err
	}

	if err := r.BindQueue(q.Name, routingKey, exchangeName); err != nil {
		return err
	}

	return nil
}
