package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const emailRoutingKey = "email.send"

// AMQPMailer hands messages to a mail relay listening on a topic exchange
type AMQPMailer struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPMailer(url, exchange string) *AMQPMailer {
	return &AMQPMailer{url: url, exchange: exchange}
}

// channel dials lazily and redials after the broker dropped the connection.
func (m *AMQPMailer) channel() (*amqp.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ch != nil && !m.ch.IsClosed() {
		return m.ch, nil
	}
	if m.conn == nil || m.conn.IsClosed() {
		conn, err := amqp.Dial(m.url)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		m.conn = conn
	}
	ch, err := m.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		m.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	log.Printf("Connected to RabbitMQ exchange %s", m.exchange)
	m.ch = ch
	return ch, nil
}

func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	ch, err := m.channel()
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		m.exchange,      // exchange
		emailRoutingKey, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (m *AMQPMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch != nil {
		m.ch.Close()
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
