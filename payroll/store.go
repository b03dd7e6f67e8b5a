/*
store.go - Persistence interfaces for payroll data

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage; the calculation engine only ever sees these interfaces.

KEY INTERFACES:
  EmployeeStore:   Employee CRUD
  AttendanceStore: Uniqueness-enforced attendance inserts and range reads
  WageStore:       Write-once wage inserts plus the paid transition
  RoleStore:       (user, role) grants feeding the authorization predicates

IMMUTABILITY CONTRACT:
  - Attendance has no update or delete: corrections are out of scope and
    a second insert for the same (employee, date) fails.
  - Wage monetary fields are write-once: the only mutation is
    MarkWagePaid, and only in the unpaid -> paid direction.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:  production SQLite
  - payroll/store/memory.go: in-memory for testing
*/
package payroll

import (
	"context"
	"time"
)

// EmployeeStore persists employee rate cards.
// Get returns (nil, nil) when the employee does not exist.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id EmployeeID) error
}

// AttendanceStore persists per-day attendance entries.
type AttendanceStore interface {
	// InsertAttendance adds a record. The referenced employee must exist
	// (ErrEmployeeNotFound) and be active (ErrEmployeeInactive); inactive
	// employees keep their history but accept no new days. A second insert
	// for the same (employee, date) pair returns a DuplicateAttendanceError
	// and leaves the first record intact.
	InsertAttendance(ctx context.Context, r AttendanceRecord) error

	// ListAttendanceInRange returns the employee's records with dates in
	// [period.Start, period.End], both ends inclusive. Order is unspecified;
	// the calculation fold is commutative.
	ListAttendanceInRange(ctx context.Context, id EmployeeID, period Period) ([]AttendanceRecord, error)

	// ListAttendance returns all records for an employee, newest first.
	ListAttendance(ctx context.Context, id EmployeeID) ([]AttendanceRecord, error)
}

// WageStore persists calculation results.
type WageStore interface {
	// InsertWage adds a wage record as a single atomic write. The monetary
	// fields are never updated afterwards.
	InsertWage(ctx context.Context, w WageRecord) error

	GetWage(ctx context.Context, id WageID) (*WageRecord, error)
	ListWages(ctx context.Context) ([]WageRecord, error)
	ListWagesByEmployee(ctx context.Context, id EmployeeID) ([]WageRecord, error)

	// MarkWagePaid sets paid = true and paid_at = at for an unpaid record.
	// Marking an already-paid record is a no-op at the storage level; the
	// engine re-reads to return current state. A missing id returns
	// ErrWageNotFound.
	MarkWagePaid(ctx context.Context, id WageID, at time.Time) error
}

// RoleStore persists role assignments.
type RoleStore interface {
	// GrantRole adds a (user, role) pair. Granting a role the user already
	// holds returns ErrDuplicateRole.
	GrantRole(ctx context.Context, a RoleAssignment) error

	RolesForUser(ctx context.Context, userID string) ([]Role, error)
	ListRoleAssignments(ctx context.Context) ([]RoleAssignment, error)
}

// Store is the full persistence surface the engine and API depend on.
type Store interface {
	EmployeeStore
	AttendanceStore
	WageStore
	RoleStore
}
