package memory

import (
	"context"
	"slices"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
)

type notificationRepository struct {
	s *Store
}

func NewNotificationRepository(s *Store) notification.Repository {
	return &notificationRepository{s: s}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	defer r.s.lock(ctx)()

	now := r.s.now()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = newID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		stored := *n
		r.s.d.notifications = append(r.s.d.notifications, &stored)
	}
	return nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, companyID, employeeID string, role user.Role, limit int) ([]*notification.Notification, error) {
	defer r.s.rlock(ctx)()

	var out []*notification.Notification
	for i := len(r.s.d.notifications) - 1; i >= 0; i-- {
		n := r.s.d.notifications[i]
		if n.CompanyID != companyID {
			continue
		}
		direct := n.RecipientID != nil && *n.RecipientID == employeeID
		if !direct && !slices.Contains(n.RecipientRoles, role) {
			continue
		}
		copied := *n
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
