package overtime

import "errors"

var (
	ErrOvertimeRuleNotFound = errors.New("overtime rule not found")
	ErrOvertimeRuleExists   = errors.New("an active overtime rule already exists for this employment type")
)
