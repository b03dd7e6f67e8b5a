/*
engine.go - Wage calculation and the paid transition

PURPOSE:
  The Engine reduces an employee's attendance over an inclusive date range
  into a wage record, and owns the single mutation wage records allow:
  marking them paid.

THE CALCULATION FOLD:
  For each attendance record in [start, end]:
    present  -> base += daily_wage
    half_day -> base += half_day_rate
    absent   -> base unchanged
  Independently of status:
    overtime += overtime_hours * overtime_rate
    advances += advance_taken
  total = base + overtime - advances

  The fold is commutative, so attendance order never matters. Total may go
  negative when advances exceed earnings for the period; it is recorded
  as-is, not clamped.

SNAPSHOT SEMANTICS:
  A wage record is a snapshot. Attendance added after the calculation does
  not retroactively change it; recalculating the same period creates a new
  record. Overlapping records for the same employee are allowed.

ATOMICITY:
  Persistence is a single insert. If the insert fails, no wage state is
  retained and the error is surfaced to the caller; the engine performs no
  internal retries.
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Engine derives wage records from attendance and manages the paid flag.
type Engine struct {
	Store Store
	Log   zerolog.Logger

	// Now is the clock used for paid_at and created_at stamps.
	// Overridable in tests.
	Now func() time.Time
}

func NewEngine(store Store, log zerolog.Logger) *Engine {
	return &Engine{Store: store, Log: log, Now: time.Now}
}

// Calculate fetches the employee's attendance for the period, folds it into
// the four monetary amounts, and persists a new unpaid WageRecord.
// Attendance records are read-only inputs and are never mutated.
func (e *Engine) Calculate(ctx context.Context, employeeID EmployeeID, period Period, calcType CalculationType) (*WageRecord, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if !calcType.Valid() {
		return nil, &ValidationError{Field: "calculation_type", Message: fmt.Sprintf("unknown type %q", calcType)}
	}

	emp, err := e.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	if !emp.Active() {
		return nil, ErrEmployeeInactive
	}

	records, err := e.Store.ListAttendanceInRange(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}

	base := decimal.Zero
	overtime := decimal.Zero
	advances := decimal.Zero

	for _, r := range records {
		switch r.Status {
		case AttendancePresent:
			base = base.Add(emp.DailyWage)
		case AttendanceHalfDay:
			base = base.Add(emp.HalfDayRate)
		case AttendanceAbsent:
			// no base wage for absent days
		}
		if r.OvertimeHours.IsPositive() {
			overtime = overtime.Add(r.OvertimeHours.Mul(emp.OvertimeRate))
		}
		if r.AdvanceTaken.IsPositive() {
			advances = advances.Add(r.AdvanceTaken)
		}
	}

	wage := WageRecord{
		ID:                WageID(uuid.NewString()),
		EmployeeID:        employeeID,
		Period:            period,
		CalculationType:   calcType,
		BaseWage:          base,
		OvertimeAmount:    overtime,
		AdvanceDeductions: advances,
		TotalWage:         base.Add(overtime).Sub(advances),
		Paid:              false,
		CreatedAt:         e.Now().UTC(),
	}

	if err := e.Store.InsertWage(ctx, wage); err != nil {
		return nil, err
	}

	e.Log.Info().
		Str("employee_id", string(employeeID)).
		Str("period", period.String()).
		Str("total_wage", wage.TotalWage.String()).
		Int("attendance_days", len(records)).
		Msg("wage calculated")

	return &wage, nil
}

// MarkPaid transitions a wage record to paid, stamping paid_at. Calling it
// on an already-paid record is accepted as a no-op returning current state:
// payment confirmations are frequently retried and a repeat must not error
// or move paid_at.
//
// The store call happens even for already-paid records, so a store that
// gates writes gets to reject the attempt before the idempotent return.
func (e *Engine) MarkPaid(ctx context.Context, id WageID) (*WageRecord, error) {
	wage, err := e.Store.GetWage(ctx, id)
	if err != nil {
		return nil, err
	}
	if wage == nil {
		return nil, ErrWageNotFound
	}

	at := e.Now().UTC()
	if err := e.Store.MarkWagePaid(ctx, id, at); err != nil {
		return nil, err
	}
	if wage.Paid {
		return wage, nil
	}

	wage.Paid = true
	wage.PaidAt = &at

	e.Log.Info().Str("wage_id", string(id)).Time("paid_at", at).Msg("wage marked paid")
	return wage, nil
}
