package employee

import (
	"github.com/shopspring/decimal"
)

// Employee is the read-only directory view the workforce engine needs.
type Employee struct {
	ID             string
	UserID         *string
	CompanyID      string
	EmployeeCode   string
	FullName       string
	Status         Status
	EmploymentType EmploymentType
	PayType        PayType
	HourlyRate     decimal.Decimal
	OTMultiplier   decimal.Decimal
	ManagerID      *string
}

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "PERMANENT"
	EmploymentTypeContract   EmploymentType = "CONTRACT"
	EmploymentTypeProbation  EmploymentType = "PROBATION"
	EmploymentTypeInternship EmploymentType = "INTERNSHIP"
	EmploymentTypePartTime   EmploymentType = "PART_TIME"
)

type PayType string

const (
	PayTypeMonthly  PayType = "MONTHLY"
	PayTypeHourly   PayType = "HOURLY"
	PayTypeSalaried PayType = "SALARIED"
)

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

// EffectiveOTMultiplier falls back to 1 when the directory holds no multiplier.
func (e Employee) EffectiveOTMultiplier() decimal.Decimal {
	if e.OTMultiplier.IsPositive() {
		return e.OTMultiplier
	}
	return decimal.NewFromInt(1)
}
