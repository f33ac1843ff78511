package user

type Permission string

const (
	PermissionAttendanceClock     Permission = "attendance.clock"
	PermissionOvertimeApprove     Permission = "overtime.approve"
	PermissionOvertimeManageRules Permission = "overtime.manage_rules"

	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveApprove Permission = "leave.approve"
	PermissionLeaveAccrue  Permission = "leave.accrue"

	PermissionPayrollManage  Permission = "payroll.manage"
	PermissionPayslipViewOwn Permission = "payslip.view_own"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermissionAttendanceClock,
		PermissionLeaveCreate,
		PermissionPayslipViewOwn,
	},
	RoleManager: {
		PermissionAttendanceClock,
		PermissionLeaveCreate,
		PermissionPayslipViewOwn,
		PermissionOvertimeApprove,
		PermissionLeaveApprove,
	},
	RoleHR: {
		PermissionAttendanceClock,
		PermissionLeaveCreate,
		PermissionPayslipViewOwn,
		PermissionOvertimeApprove,
		PermissionOvertimeManageRules,
		PermissionLeaveApprove,
		PermissionLeaveAccrue,
		PermissionPayrollManage,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	if role == RoleSuperAdmin {
		return true
	}
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
