package main

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

type Notification struct {
	UserId       int             `json:"user_id"`
	Message      string          `json:"message"`
	CurrentSpent decimal.Decimal `json:"current_spent"`
	Limit        decimal.Decimal `json:"limit"`
}

type NotificationPublisher interface {
	Publish(ctx context.Context, notification Notification) error
}

// AMQPPublisher delivers notifications through a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewAMQPPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	queue, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, channel: ch, queue: queue}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx,
		"",           // default exchange
		p.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "notification published", "user_id", notification.UserId)
	return nil
}

func (p *AMQPPublisher) Close() {
	p.channel.Close()
	p.conn.Close()
}

// NopPublisher is used when no AMQP URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, notification Notification) error {
	return nil
}

var (
	_ NotificationPublisher = (*AMQPPublisher)(nil)
	_ NotificationPublisher = NopPublisher{}
)
