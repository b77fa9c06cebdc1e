// Package mq fans messages out over a RabbitMQ exchange.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Broker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects and declares a durable fanout exchange.
func Dial(url, exchange string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare an exchange: %w", err)
	}

	return &Broker{conn: conn, ch: ch, exchange: exchange}, nil
}

func (b *Broker) Publish(ctx context.Context, body []byte) error {
	return b.ch.PublishWithContext(ctx,
		b.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}

func (b *Broker) PublishJSON(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Publish(ctx, body)
}

// Consume binds an exclusive queue to the exchange. The returned channel is
// closed when the connection goes away.
func (b *Broker) Consume() (<-chan amqp.Delivery, error) {
	q, err := b.ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	err = b.ch.QueueBind(
		q.Name,     // queue name
		"",         // routing key
		b.exchange, // exchange
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind a queue: %w", err)
	}

	msgs, err := b.ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}
	return msgs, nil
}

func (b *Broker) Close() error {
	if err := b.ch.Close(); err != nil {
		b.conn.Close()
		return err
	}
	return b.conn.Close()
}
