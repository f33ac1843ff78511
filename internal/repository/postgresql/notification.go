package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
)

const notificationInsertColumns = 12

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func notificationArgs(n *notification.Notification) ([]interface{}, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}

	roles := make([]string, len(n.RecipientRoles))
	for i, r := range n.RecipientRoles {
		roles[i] = string(r)
	}

	return []interface{}{
		n.ID,
		n.CompanyID,
		n.RecipientID,
		roles,
		n.SenderID,
		string(n.Type),
		n.Title,
		n.Message,
		n.Link,
		dataJSON,
		n.IsRead,
		n.CreatedAt,
	}, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch inserts all notifications with a single statement
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*notificationInsertColumns)

	for i, n := range notifications {
		args, err := notificationArgs(n)
		if err != nil {
			return err
		}

		placeholders := make([]string, notificationInsertColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*notificationInsertColumns+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (
			id, company_id, recipient_id, recipient_roles, sender_id, type,
			title, message, link, data, is_read, created_at
		)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}
	return nil
}

// ListForRecipient returns notifications addressed to the employee or the role
func (r *notificationRepository) ListForRecipient(ctx context.Context, companyID, employeeID string, role user.Role, limit int) ([]*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, recipient_id, recipient_roles, sender_id, type,
			   title, message, link, data, is_read, created_at
		FROM notifications
		WHERE company_id = $1
		  AND (recipient_id = $2 OR $3 = ANY(recipient_roles))
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, string(role), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		var roles []string
		var dataJSON []byte
		if err := rows.Scan(
			&n.ID, &n.CompanyID, &n.RecipientID, &roles, &n.SenderID, &n.Type,
			&n.Title, &n.Message, &n.Link, &dataJSON, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		for _, role := range roles {
			n.RecipientRoles = append(n.RecipientRoles, user.Role(role))
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
