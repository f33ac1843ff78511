package user

import "errors"

var (
	ErrForbidden               = errors.New("not allowed to act on this resource")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrEmployeeIDRequired      = errors.New("employee ID is required")
)
