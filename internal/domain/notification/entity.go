package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveRequested   NotificationType = "leave_requested"
	TypeLeaveApproved    NotificationType = "leave_approved"
	TypeLeaveRejected    NotificationType = "leave_rejected"
	TypeLeaveAccrued     NotificationType = "leave_accrued"
	TypeOvertimeApproved NotificationType = "overtime_approved"
	TypePayslipReleased  NotificationType = "payslip_released"
)

// Notification is addressed to one employee, to every holder of a role in the
// tenant, or both.
type Notification struct {
	ID             string
	CompanyID      string
	RecipientID    *string
	RecipientRoles []user.Role
	SenderID       *string
	Type           NotificationType
	Title          string
	Message        string
	Link           string
	Data           map[string]interface{}
	IsRead         bool
	CreatedAt      time.Time
}

// StreamKeys are the SSE hub keys this notification is delivered to.
func (n *Notification) StreamKeys() []string {
	keys := make([]string, 0, 1+len(n.RecipientRoles))
	if n.RecipientID != nil {
		keys = append(keys, EmployeeStreamKey(*n.RecipientID))
	}
	for _, r := range n.RecipientRoles {
		keys = append(keys, RoleStreamKey(n.CompanyID, r))
	}
	return keys
}

func EmployeeStreamKey(employeeID string) string {
	return "employee:" + employeeID
}

func RoleStreamKey(companyID string, role user.Role) string {
	return "role:" + companyID + ":" + string(role)
}
