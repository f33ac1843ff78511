package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	// ListForRecipient returns the newest notifications addressed to the
	// employee directly or to the given role within the tenant.
	ListForRecipient(ctx context.Context, companyID, employeeID string, role user.Role, limit int) ([]*Notification, error)
}

// Publisher fans stored notifications out to an external channel.
type Publisher interface {
	Publish(ctx context.Context, notifications []*Notification) error
}
