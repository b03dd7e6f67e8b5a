/*
Package payroll provides the core wage administration engine.

PURPOSE:
  This package contains the domain types and algorithms for deriving wages
  from daily attendance: employee rate cards, per-day attendance entries,
  the calculation fold that turns an attendance slice into a wage record,
  and the reporting aggregator over the wage record set.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: rate card (daily, overtime, half-day) plus optional owning login
  - AttendanceRecord: one immutable entry per (employee, date)
  - WageRecord: derived amounts for an inclusive period, write-once at creation
  - RoleAssignment: (user, role) pair feeding the authorization predicates

DESIGN PRINCIPLES:
  1. Precision: all monetary amounts are decimal.Decimal, never float
  2. Write-once: a WageRecord's derived amounts are fixed at creation;
     recalculation means creating a new record
  3. One-way paid flag: paid transitions false -> true, never back

SEE ALSO:
  - engine.go: the calculation fold and mark-paid transition
  - report.go: summary aggregation
  - store.go: persistence interfaces
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type AttendanceID string
type WageID string

// =============================================================================
// EMPLOYEE - Rate card and lifecycle status
// =============================================================================

type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "active"
	StatusInactive EmployeeStatus = "inactive"
)

// Employee holds the per-day rate card used by the calculation engine.
// UserID optionally links the record to an authenticated login; an empty
// UserID means the record is admin-managed only.
type Employee struct {
	ID       EmployeeID
	UserID   string
	FullName string
	Email    string
	Phone    string

	DailyWage    decimal.Decimal
	OvertimeRate decimal.Decimal
	HalfDayRate  decimal.Decimal

	Status    EmployeeStatus
	CreatedAt time.Time
}

// Active reports whether new attendance and wage entries may reference
// this employee. Inactive employees are retained for history only.
func (e *Employee) Active() bool { return e.Status == StatusActive }

// Validate checks the rate card. Rates must be non-negative; a zero rate
// is allowed (e.g. unpaid half-days).
func (e *Employee) Validate() error {
	if e.FullName == "" {
		return &ValidationError{Field: "full_name", Message: "must not be empty"}
	}
	for _, r := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"daily_wage", e.DailyWage},
		{"overtime_rate", e.OvertimeRate},
		{"half_day_rate", e.HalfDayRate},
	} {
		if r.value.IsNegative() {
			return &ValidationError{Field: r.name, Message: "must not be negative"}
		}
	}
	switch e.Status {
	case StatusActive, StatusInactive:
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", e.Status)}
	}
	return nil
}

// =============================================================================
// ATTENDANCE - One immutable entry per (employee, date)
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half_day"
)

// AttendanceRecord captures one day of attendance. Records are immutable
// once inserted; the (EmployeeID, Date) pair is unique and a second insert
// for the same pair fails rather than overwriting.
type AttendanceRecord struct {
	ID         AttendanceID
	EmployeeID EmployeeID
	Date       Date
	Status     AttendanceStatus

	// OvertimeHours and AdvanceTaken apply independently of Status:
	// an absent day can still carry an advance payout.
	OvertimeHours decimal.Decimal
	AdvanceTaken  decimal.Decimal

	Notes     string
	CreatedAt time.Time
}

func (r *AttendanceRecord) Validate() error {
	if r.EmployeeID == "" {
		return &ValidationError{Field: "employee_id", Message: "must not be empty"}
	}
	if r.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "must be a valid calendar date"}
	}
	switch r.Status {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay:
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", r.Status)}
	}
	if r.OvertimeHours.IsNegative() {
		return &ValidationError{Field: "overtime_hours", Message: "must not be negative"}
	}
	if r.AdvanceTaken.IsNegative() {
		return &ValidationError{Field: "advance_taken", Message: "must not be negative"}
	}
	return nil
}

// =============================================================================
// WAGE RECORD - Derived amounts for a period, write-once at creation
// =============================================================================

// CalculationType labels how the period was chosen. It does not alter the
// arithmetic, which is always attendance-driven over the given range.
type CalculationType string

const (
	CalculationDaily   CalculationType = "daily"
	CalculationWeekly  CalculationType = "weekly"
	CalculationMonthly CalculationType = "monthly"
)

func (c CalculationType) Valid() bool {
	switch c {
	case CalculationDaily, CalculationWeekly, CalculationMonthly:
		return true
	}
	return false
}

// WageRecord is the persisted result of one calculation run. The four
// monetary fields are fixed at creation and satisfy
//
//	TotalWage = BaseWage + OvertimeAmount - AdvanceDeductions
//
// exactly. TotalWage may be negative when advances exceed earnings for
// the period; the engine records it as-is rather than clamping.
// Paid/PaidAt are the only fields that ever change after creation.
type WageRecord struct {
	ID              WageID
	EmployeeID      EmployeeID
	Period          Period
	CalculationType CalculationType

	BaseWage          decimal.Decimal
	OvertimeAmount    decimal.Decimal
	AdvanceDeductions decimal.Decimal
	TotalWage         decimal.Decimal

	Paid      bool
	PaidAt    *time.Time
	CreatedAt time.Time
}

// =============================================================================
// ROLES - (user, role) assignments for authorization
// =============================================================================

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleEmployee }

// RoleAssignment grants a role to a login. The (UserID, Role) pair is
// unique; granting the same role twice fails.
type RoleAssignment struct {
	ID        string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// MustMoney parses a decimal string, returning zero on malformed input.
// Intended for trusted inputs (seeds, storage round-trips).
func MustMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
