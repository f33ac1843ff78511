package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	kafkago "github.com/segmentio/kafka-go"
)

const NotificationTopic = "hris.notifications"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type notificationEvent struct {
	ID             string                 `json:"id"`
	CompanyID      string                 `json:"company_id"`
	RecipientID    *string                `json:"recipient_id,omitempty"`
	RecipientRoles []string               `json:"recipient_roles,omitempty"`
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Link           string                 `json:"link,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

type NotificationPublisher struct {
	writer MessageWriter
	topic  string
}

// NewWriter builds a kafka-go writer for the given brokers.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewNotificationPublisher(writer MessageWriter, topic string) *NotificationPublisher {
	if topic == "" {
		topic = NotificationTopic
	}
	return &NotificationPublisher{writer: writer, topic: topic}
}

// Publish writes one message per notification keyed by company, so a tenant's
// notifications stay ordered within a partition.
func (p *NotificationPublisher) Publish(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(notifications))
	for _, n := range notifications {
		roles := make([]string, len(n.RecipientRoles))
		for i, r := range n.RecipientRoles {
			roles[i] = string(r)
		}
		payload, err := json.Marshal(notificationEvent{
			ID:             n.ID,
			CompanyID:      n.CompanyID,
			RecipientID:    n.RecipientID,
			RecipientRoles: roles,
			Type:           string(n.Type),
			Title:          n.Title,
			Message:        n.Message,
			Link:           n.Link,
			Data:           n.Data,
			CreatedAt:      n.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to encode notification %s: %w", n.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Topic: p.topic,
			Key:   []byte(n.CompanyID),
			Value: payload,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(n.Type)},
				{Key: "aggregate_type", Value: []byte("notification")},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish notifications: %w", err)
	}
	return nil
}
