package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Routing keys of the domain events
const (
	EventSubscriptionActivated  = "subscription.activated"
	EventReferralBonusActivated = "referral.bonus_activated"
)

// EventPublisher sends domain events after a transaction commits
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// Publish implements EventPublisher
func (NoopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}

// SubscriptionEvent is published when a subscribe call commits
type SubscriptionEvent struct {
	AccountID      uint      `json:"account_id"`
	SubscriptionID uint      `json:"subscription_id"`
	Quality        string    `json:"quality"`
	IsTrial        bool      `json:"is_trial"`
	DiscountAmount float64   `json:"discount_amount"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ReferralBonusEvent is published when an invitation bonus is activated
type ReferralBonusEvent struct {
	InvitationID     uint      `json:"invitation_id"`
	InviterAccountID uint      `json:"inviter_account_id"`
	InviteeAccountID uint      `json:"invitee_account_id"`
	DiscountAmount   float64   `json:"discount_amount"`
	ValidUntil       time.Time `json:"valid_until"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// RabbitMQPublisher publishes JSON events to a topic exchange
type RabbitMQPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the events exchange
func NewRabbitMQPublisher(amqpURL, exchange string) (*RabbitMQPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &RabbitMQPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish implements EventPublisher
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close releases the channel and the connection
func (p *RabbitMQPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
