/*
store.go - Authorizing decorator over payroll.Store

PURPOSE:
  Wraps a payroll.Store so that every read returns only the rows the
  policy table allows and every write is gated before touching storage.
  This is the single enforcement point: handlers never filter, and the
  engine runs against an already-scoped store.

SEMANTICS:
  - Reads: hidden rows are simply absent. A single-row Get of a row the
    principal may not see behaves like a miss (nil, nil), matching how a
    row-filtered query would behave.
  - Writes: a rejected operation returns a DeniedError naming the entity
    and operation. Nothing reaches the inner store.

OWNERSHIP RESOLUTION:
  Attendance and wage rows are owned through their employee. The decorator
  resolves owners against the INNER (unscoped) store - resolution is an
  implementation detail of enforcement, not an access grant.
*/
package authz

import (
	"context"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// Store is a payroll.Store filtered for one principal.
type Store struct {
	inner payroll.Store
	p     Principal
}

var _ payroll.Store = (*Store)(nil)

// Scope wraps a store for the given principal. Build one per request.
func Scope(inner payroll.Store, p Principal) *Store {
	return &Store{inner: inner, p: p}
}

func (s *Store) denied(entity Entity, op Operation) error {
	return &payroll.DeniedError{Entity: string(entity), Operation: string(op)}
}

// ownerOf resolves the owning user of an employee via the inner store.
// Missing employees resolve to unowned, which every non-admin predicate
// rejects.
func (s *Store) ownerOf(ctx context.Context, id payroll.EmployeeID) (string, error) {
	emp, err := s.inner.GetEmployee(ctx, id)
	if err != nil {
		return "", err
	}
	if emp == nil {
		return "", nil
	}
	return emp.UserID, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	op := OpInsert
	existing, err := s.inner.GetEmployee(ctx, e.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		op = OpUpdate
	}
	if !Allows(s.p, EntityEmployee, op, Row{OwnerUserID: e.UserID}) {
		return s.denied(EntityEmployee, op)
	}
	return s.inner.SaveEmployee(ctx, e)
}

func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	emp, err := s.inner.GetEmployee(ctx, id)
	if err != nil || emp == nil {
		return nil, err
	}
	if !Allows(s.p, EntityEmployee, OpSelect, Row{OwnerUserID: emp.UserID}) {
		return nil, nil
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	all, err := s.inner.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	visible := all[:0:0]
	for _, e := range all {
		if Allows(s.p, EntityEmployee, OpSelect, Row{OwnerUserID: e.UserID}) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id payroll.EmployeeID) error {
	owner, err := s.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if !Allows(s.p, EntityEmployee, OpDelete, Row{OwnerUserID: owner}) {
		return s.denied(EntityEmployee, OpDelete)
	}
	return s.inner.DeleteEmployee(ctx, id)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) InsertAttendance(ctx context.Context, r payroll.AttendanceRecord) error {
	owner, err := s.ownerOf(ctx, r.EmployeeID)
	if err != nil {
		return err
	}
	if !Allows(s.p, EntityAttendance, OpInsert, Row{OwnerUserID: owner}) {
		return s.denied(EntityAttendance, OpInsert)
	}
	return s.inner.InsertAttendance(ctx, r)
}

func (s *Store) ListAttendanceInRange(ctx context.Context, id payroll.EmployeeID, period payroll.Period) ([]payroll.AttendanceRecord, error) {
	return s.filterAttendance(ctx, id, func(ctx context.Context) ([]payroll.AttendanceRecord, error) {
		return s.inner.ListAttendanceInRange(ctx, id, period)
	})
}

func (s *Store) ListAttendance(ctx context.Context, id payroll.EmployeeID) ([]payroll.AttendanceRecord, error) {
	return s.filterAttendance(ctx, id, func(ctx context.Context) ([]payroll.AttendanceRecord, error) {
		return s.inner.ListAttendance(ctx, id)
	})
}

// filterAttendance evaluates the row predicate once per employee: all rows
// in a single-employee query share the same owner.
func (s *Store) filterAttendance(ctx context.Context, id payroll.EmployeeID, load func(context.Context) ([]payroll.AttendanceRecord, error)) ([]payroll.AttendanceRecord, error) {
	owner, err := s.ownerOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Allows(s.p, EntityAttendance, OpSelect, Row{OwnerUserID: owner}) {
		return nil, nil
	}
	return load(ctx)
}

// =============================================================================
// WAGES
// =============================================================================

func (s *Store) InsertWage(ctx context.Context, w payroll.WageRecord) error {
	owner, err := s.ownerOf(ctx, w.EmployeeID)
	if err != nil {
		return err
	}
	if !Allows(s.p, EntityWage, OpInsert, Row{OwnerUserID: owner}) {
		return s.denied(EntityWage, OpInsert)
	}
	return s.inner.InsertWage(ctx, w)
}

func (s *Store) GetWage(ctx context.Context, id payroll.WageID) (*payroll.WageRecord, error) {
	w, err := s.inner.GetWage(ctx, id)
	if err != nil || w == nil {
		return nil, err
	}
	owner, err := s.ownerOf(ctx, w.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !Allows(s.p, EntityWage, OpSelect, Row{OwnerUserID: owner}) {
		return nil, nil
	}
	return w, nil
}

func (s *Store) ListWages(ctx context.Context) ([]payroll.WageRecord, error) {
	all, err := s.inner.ListWages(ctx)
	if err != nil {
		return nil, err
	}
	return s.filterWages(ctx, all)
}

func (s *Store) ListWagesByEmployee(ctx context.Context, id payroll.EmployeeID) ([]payroll.WageRecord, error) {
	all, err := s.inner.ListWagesByEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.filterWages(ctx, all)
}

func (s *Store) filterWages(ctx context.Context, all []payroll.WageRecord) ([]payroll.WageRecord, error) {
	if s.p.IsAdmin() {
		return all, nil
	}
	owners := make(map[payroll.EmployeeID]string)
	visible := all[:0:0]
	for _, w := range all {
		owner, ok := owners[w.EmployeeID]
		if !ok {
			var err error
			owner, err = s.ownerOf(ctx, w.EmployeeID)
			if err != nil {
				return nil, err
			}
			owners[w.EmployeeID] = owner
		}
		if Allows(s.p, EntityWage, OpSelect, Row{OwnerUserID: owner}) {
			visible = append(visible, w)
		}
	}
	return visible, nil
}

func (s *Store) MarkWagePaid(ctx context.Context, id payroll.WageID, at time.Time) error {
	w, err := s.inner.GetWage(ctx, id)
	if err != nil {
		return err
	}
	var owner string
	if w != nil {
		if owner, err = s.ownerOf(ctx, w.EmployeeID); err != nil {
			return err
		}
	}
	if !Allows(s.p, EntityWage, OpUpdate, Row{OwnerUserID: owner}) {
		return s.denied(EntityWage, OpUpdate)
	}
	return s.inner.MarkWagePaid(ctx, id, at)
}

// =============================================================================
// ROLES
// =============================================================================

func (s *Store) GrantRole(ctx context.Context, a payroll.RoleAssignment) error {
	if !Allows(s.p, EntityRole, OpInsert, Row{SubjectUserID: a.UserID}) {
		return s.denied(EntityRole, OpInsert)
	}
	return s.inner.GrantRole(ctx, a)
}

func (s *Store) RolesForUser(ctx context.Context, userID string) ([]payroll.Role, error) {
	if !Allows(s.p, EntityRole, OpSelect, Row{SubjectUserID: userID}) {
		return nil, nil
	}
	return s.inner.RolesForUser(ctx, userID)
}

func (s *Store) ListRoleAssignments(ctx context.Context) ([]payroll.RoleAssignment, error) {
	all, err := s.inner.ListRoleAssignments(ctx)
	if err != nil {
		return nil, err
	}
	visible := all[:0:0]
	for _, a := range all {
		if Allows(s.p, EntityRole, OpSelect, Row{SubjectUserID: a.UserID}) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}
