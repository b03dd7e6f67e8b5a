/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  The API layer maps these to HTTP statuses; the storage layer wraps
  driver-level failures into them.

ERROR CATEGORIES:
  1. Not-found errors      - referenced employee/wage missing
  2. Validation errors     - malformed input, terminal for the request
  3. Constraint violations - uniqueness conflicts (duplicate attendance/role)
  4. Authorization errors  - policy predicate rejected the operation
  5. Transient errors      - retryable storage I/O failures

PROPAGATION:
  Validation, authorization and constraint errors are terminal and surfaced
  verbatim. Transient storage errors may be retried by the caller; the
  engine itself never retries.
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist
	// (or is not visible to the acting principal).
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrWageNotFound is returned when a referenced wage record doesn't exist.
	ErrWageNotFound = errors.New("wage record not found")

	// ErrEmployeeInactive is returned when attendance or wage entry targets
	// an inactive employee. Inactive employees are history-only.
	ErrEmployeeInactive = errors.New("employee is inactive")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrDuplicateAttendance is returned when inserting a second attendance
	// record for the same (employee, date) pair. The first record is intact.
	ErrDuplicateAttendance = errors.New("attendance already recorded for this date")

	// ErrDuplicateRole is returned when granting a role the user already holds.
	ErrDuplicateRole = errors.New("role already granted")

	// ErrDenied is returned when an authorization predicate rejects the
	// operation for the acting principal.
	ErrDenied = errors.New("operation not permitted")

	// ErrTransientStorage wraps retryable I/O failures from the store.
	ErrTransientStorage = errors.New("transient storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateAttendanceError names the conflicting (employee, date) pair.
// Surfaced verbatim so callers can report the specific conflict instead of
// a generic failure.
type DuplicateAttendanceError struct {
	EmployeeID EmployeeID
	Date       Date
}

func (e *DuplicateAttendanceError) Error() string {
	return fmt.Sprintf("attendance already recorded for employee %s on %s", e.EmployeeID, e.Date)
}

func (e *DuplicateAttendanceError) Unwrap() error { return ErrDuplicateAttendance }

// ValidationError reports a malformed field on input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// DeniedError adds the entity and operation that the policy rejected.
type DeniedError struct {
	Entity    string
	Operation string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("operation not permitted: %s on %s", e.Operation, e.Entity)
}

func (e *DeniedError) Unwrap() error { return ErrDenied }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrWageNotFound)
}

// IsConflict returns true for uniqueness violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAttendance) || errors.Is(err, ErrDuplicateRole)
}

// IsClientError returns true if the error is due to invalid client input
// and must not be retried.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrEmployeeInactive) ||
		IsConflict(err)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStorage)
}
