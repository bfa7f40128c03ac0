package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	ExchangeName = "nrw.reports"

	RoutingKeyReportCreated  = "report.created"
	RoutingKeyReportResolved = "report.resolved"
	RoutingKeyReportReopened = "report.reopened"
	RoutingKeyReportDeleted  = "report.deleted"

	publishTimeout   = 5 * time.Second
	maxRetryAttempts = 3
	initialDelay     = 200 * time.Millisecond
	maxDelay         = 2 * time.Second
)

type ReportEvent struct {
	ReportID  string   `json:"report_id"`
	IssueType string   `json:"issue_type,omitempty"`
	Resolved  bool     `json:"resolved"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event ReportEvent) error
	Close()
}

type rabbitPublisher struct {
	url string
	log zerolog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitPublisher(url string, log zerolog.Logger) (Publisher, error) {
	p := &rabbitPublisher{url: url, log: log}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *rabbitPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	return nil
}

// Publish retries with backoff and reopens the connection when it dropped.
func (p *rabbitPublisher) Publish(ctx context.Context, routingKey string, event ReportEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return retry.Do(
		func() error {
			return p.publishOnce(ctx, routingKey, body)
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts),
		retry.Delay(initialDelay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn().Err(err).Uint("attempt", n+1).Str("routing_key", routingKey).Msg("retrying event publish")
		}),
	)
}

func (p *rabbitPublisher) publishOnce(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *rabbitPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *rabbitPublisher) closeLocked() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, ReportEvent) error { return nil }
func (noopPublisher) Close()                                             {}
