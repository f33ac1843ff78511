package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
)

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	CompanyID      string
	RecipientID    *string
	RecipientRoles []user.Role
	SenderID       *string
	Type           NotificationType
	Title          string
	Message        string
	Link           string
	Data           map[string]interface{}
}

func (r CreateNotificationRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if r.RecipientID == nil && len(r.RecipientRoles) == 0 {
		errs = append(errs, validator.ValidationError{Field: "recipient", Message: "recipient employee or roles are required"})
	}
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Link      string                 `json:"link,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}

func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
