package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/sse"
)

//go:generate mockgen -destination=mock/service_mock.go -package=mock . Service

// Service defines the notification service interface
type Service interface {
	// QueueNotification queues for async processing by background workers.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	GetNotifications(ctx context.Context, actor user.Actor, limit int) ([]NotificationResponse, error)
	Subscribe(actor user.Actor) (<-chan sse.Event, func())

	Stop()
}
