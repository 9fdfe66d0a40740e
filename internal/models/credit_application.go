package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationDenied   ApplicationStatus = "DENIED"
)

// CreditApplication is append-only from the point of view of this service.
type CreditApplication struct {
	ID               int64             `json:"id" db:"id"`
	UserID           int64             `json:"userId" db:"user_id"`
	RequestedLimit   decimal.Decimal   `json:"requestedLimit" db:"requested_limit"`
	AnnualIncome     decimal.Decimal   `json:"annualIncome" db:"annual_income"`
	EmploymentStatus string            `json:"employmentStatus" db:"employment_status"`
	Status           ApplicationStatus `json:"status" db:"status"`
	ApplicationDate  time.Time         `json:"applicationDate" db:"application_date"`
	Comments         string            `json:"comments,omitempty" db:"comments"`
}
