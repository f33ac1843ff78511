package user

type Role string

const (
	RoleEmployee   Role = "EMPLOYEE"
	RoleManager    Role = "MANAGER"     // Can approve leave/overtime for direct reports
	RoleHR         Role = "HR"          // Tenant-wide leave, accrual and payroll administration
	RoleSuperAdmin Role = "SUPER_ADMIN" // Everything HR can do
)

// Actor is the authenticated caller of an operation, taken from the access token.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       Role
}

// IsTenantWide reports whether the role may act on any employee of its tenant.
func (r Role) IsTenantWide() bool {
	return r == RoleHR || r == RoleSuperAdmin
}

// CanApproveFor reports whether the actor may approve or reject on behalf of an
// employee whose manager is managerID.
func (a Actor) CanApproveFor(managerID *string) bool {
	if a.Role.IsTenantWide() {
		return true
	}
	if a.Role == RoleManager {
		return managerID != nil && a.EmployeeID != "" && *managerID == a.EmployeeID
	}
	return false
}
