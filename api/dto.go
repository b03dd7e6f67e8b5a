/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  All monetary amounts travel as decimal strings ("1500.00"), never as
  JSON numbers. Handlers parse them with shopspring/decimal so no float
  rounding creeps in at the boundary.

VALIDATION:
  Request types carry go-playground/validator struct tags. Handlers run
  the shared validator before touching domain logic; decimal strings are
  parsed separately since the validator has no money rule.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: Domain model these map to
*/
package api

import (
	"github.com/go-playground/validator/v10"

	"github.com/warp/payroll-engine/payroll"
)

// validate is the shared request validator.
var validate = validator.New()

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id,omitempty"`
	FullName     string `json:"full_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DailyWage    string `json:"daily_wage"`
	OvertimeRate string `json:"overtime_rate"`
	HalfDayRate  string `json:"half_day_rate"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	UserID       string `json:"user_id" validate:"omitempty,max=64"`
	FullName     string `json:"full_name" validate:"required,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	DailyWage    string `json:"daily_wage" validate:"required"`
	OvertimeRate string `json:"overtime_rate" validate:"required"`
	HalfDayRate  string `json:"half_day_rate" validate:"required"`
}

// UpdateEmployeeRequest is the request to update an employee.
// All fields are required; this is a full replacement, not a patch.
type UpdateEmployeeRequest struct {
	UserID       string `json:"user_id" validate:"omitempty,max=64"`
	FullName     string `json:"full_name" validate:"required,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	DailyWage    string `json:"daily_wage" validate:"required"`
	OvertimeRate string `json:"overtime_rate" validate:"required"`
	HalfDayRate  string `json:"half_day_rate" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=active inactive"`
}

// =============================================================================
// ATTENDANCE TYPES
// =============================================================================

// AttendanceDTO represents an attendance record in API responses.
type AttendanceDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Date          string `json:"date"`
	Status        string `json:"status"`
	OvertimeHours string `json:"overtime_hours"`
	AdvanceTaken  string `json:"advance_taken"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CreateAttendanceRequest is the request to record a day's attendance.
type CreateAttendanceRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required"`
	Date          string `json:"date" validate:"required"`
	Status        string `json:"status" validate:"required,oneof=present absent half_day"`
	OvertimeHours string `json:"overtime_hours" validate:"omitempty"`
	AdvanceTaken  string `json:"advance_taken" validate:"omitempty"`
	Notes         string `json:"notes" validate:"omitempty,max=500"`
}

// =============================================================================
// WAGE TYPES
// =============================================================================

// WageDTO represents a wage calculation in API responses.
type WageDTO struct {
	ID                string  `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	PeriodStart       string  `json:"period_start"`
	PeriodEnd         string  `json:"period_end"`
	CalculationType   string  `json:"calculation_type"`
	BaseWage          string  `json:"base_wage"`
	OvertimeAmount    string  `json:"overtime_amount"`
	AdvanceDeductions string  `json:"advance_deductions"`
	TotalWage         string  `json:"total_wage"`
	Paid              bool    `json:"paid"`
	PaidAt            *string `json:"paid_at,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

// CalculateWageRequest asks the engine to run a calculation.
type CalculateWageRequest struct {
	EmployeeID      string `json:"employee_id" validate:"required"`
	PeriodStart     string `json:"period_start" validate:"required"`
	PeriodEnd       string `json:"period_end" validate:"required"`
	CalculationType string `json:"calculation_type" validate:"required,oneof=daily weekly monthly"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// SummaryDTO is the payroll summary report.
type SummaryDTO struct {
	TotalPaid           string `json:"total_paid"`
	TotalPending        string `json:"total_pending"`
	UniqueEmployeesPaid int    `json:"unique_employees_paid"`
	AveragePaidWage     string `json:"average_paid_wage"`
}

// =============================================================================
// ROLE TYPES
// =============================================================================

// RoleAssignmentDTO represents a role grant.
type RoleAssignmentDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// GrantRoleRequest is the request to grant a role to a user.
type GrantRoleRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Role   string `json:"role" validate:"required,oneof=admin employee"`
}

// MeDTO describes the calling principal.
type MeDTO struct {
	UserID        string   `json:"user_id"`
	Roles         []string `json:"roles"`
	Authenticated bool     `json:"authenticated"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a demo scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:           string(e.ID),
		UserID:       e.UserID,
		FullName:     e.FullName,
		Email:        e.Email,
		Phone:        e.Phone,
		DailyWage:    e.DailyWage.String(),
		OvertimeRate: e.OvertimeRate.String(),
		HalfDayRate:  e.HalfDayRate.String(),
		Status:       string(e.Status),
		CreatedAt:    formatTimestamp(e.CreatedAt),
	}
}

func toAttendanceDTO(r payroll.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		ID:            string(r.ID),
		EmployeeID:    string(r.EmployeeID),
		Date:          r.Date.String(),
		Status:        string(r.Status),
		OvertimeHours: r.OvertimeHours.String(),
		AdvanceTaken:  r.AdvanceTaken.String(),
		Notes:         r.Notes,
		CreatedAt:     formatTimestamp(r.CreatedAt),
	}
}

func toWageDTO(w payroll.WageRecord) WageDTO {
	dto := WageDTO{
		ID:                string(w.ID),
		EmployeeID:        string(w.EmployeeID),
		PeriodStart:       w.Period.Start.String(),
		PeriodEnd:         w.Period.End.String(),
		CalculationType:   string(w.CalculationType),
		BaseWage:          w.BaseWage.String(),
		OvertimeAmount:    w.OvertimeAmount.String(),
		AdvanceDeductions: w.AdvanceDeductions.String(),
		TotalWage:         w.TotalWage.String(),
		Paid:              w.Paid,
		CreatedAt:         formatTimestamp(w.CreatedAt),
	}
	if w.PaidAt != nil {
		s := formatTimestamp(*w.PaidAt)
		dto.PaidAt = &s
	}
	return dto
}

func toRoleAssignmentDTO(a payroll.RoleAssignment) RoleAssignmentDTO {
	return RoleAssignmentDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		Role:      string(a.Role),
		CreatedAt: formatTimestamp(a.CreatedAt),
	}
}
