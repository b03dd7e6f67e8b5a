// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	employees   map[payroll.EmployeeID]payroll.Employee
	attendance  map[attendanceKey]payroll.AttendanceRecord
	wages       map[payroll.WageID]payroll.WageRecord
	wageOrder   []payroll.WageID
	roles       map[roleKey]payroll.RoleAssignment
}

type attendanceKey struct {
	EmployeeID payroll.EmployeeID
	Date       string
}

type roleKey struct {
	UserID string
	Role   payroll.Role
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[payroll.EmployeeID]payroll.Employee),
		attendance: make(map[attendanceKey]payroll.AttendanceRecord),
		wages:      make(map[payroll.WageID]payroll.WageRecord),
		roles:      make(map[roleKey]payroll.RoleAssignment),
	}
}

var _ payroll.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// EmployeeStore

func (m *Memory) SaveEmployee(_ context.Context, e payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id payroll.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

// -----------------------------------------------------------------------------
// AttendanceStore

func (m *Memory) InsertAttendance(_ context.Context, r payroll.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emp, ok := m.employees[r.EmployeeID]
	if !ok {
		return payroll.ErrEmployeeNotFound
	}
	if !emp.Active() {
		return payroll.ErrEmployeeInactive
	}

	k := attendanceKey{EmployeeID: r.EmployeeID, Date: r.Date.String()}
	if _, exists := m.attendance[k]; exists {
		return &payroll.DuplicateAttendanceError{EmployeeID: r.EmployeeID, Date: r.Date}
	}
	m.attendance[k] = r
	return nil
}

func (m *Memory) ListAttendanceInRange(_ context.Context, id payroll.EmployeeID, period payroll.Period) ([]payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.AttendanceRecord
	for _, r := range m.attendance {
		if r.EmployeeID == id && period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ListAttendance(_ context.Context, id payroll.EmployeeID) ([]payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.AttendanceRecord
	for _, r := range m.attendance {
		if r.EmployeeID == id {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// -----------------------------------------------------------------------------
// WageStore

func (m *Memory) InsertWage(_ context.Context, w payroll.WageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wages[w.ID] = w
	m.wageOrder = append(m.wageOrder, w.ID)
	return nil
}

func (m *Memory) GetWage(_ context.Context, id payroll.WageID) (*payroll.WageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wages[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *Memory) ListWages(_ context.Context) ([]payroll.WageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.WageRecord, 0, len(m.wageOrder))
	for _, id := range m.wageOrder {
		out = append(out, m.wages[id])
	}
	return out, nil
}

func (m *Memory) ListWagesByEmployee(_ context.Context, id payroll.EmployeeID) ([]payroll.WageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.WageRecord
	for _, wid := range m.wageOrder {
		if w := m.wages[wid]; w.EmployeeID == id {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *Memory) MarkWagePaid(_ context.Context, id payroll.WageID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wages[id]
	if !ok {
		return payroll.ErrWageNotFound
	}
	if w.Paid {
		return nil
	}
	w.Paid = true
	w.PaidAt = &at
	m.wages[id] = w
	return nil
}

// -----------------------------------------------------------------------------
// RoleStore

func (m *Memory) GrantRole(_ context.Context, a payroll.RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := roleKey{UserID: a.UserID, Role: a.Role}
	if _, exists := m.roles[k]; exists {
		return payroll.ErrDuplicateRole
	}
	m.roles[k] = a
	return nil
}

func (m *Memory) RolesForUser(_ context.Context, userID string) ([]payroll.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.Role
	for k := range m.roles {
		if k.UserID == userID {
			out = append(out, k.Role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *Memory) ListRoleAssignments(_ context.Context) ([]payroll.RoleAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]payroll.RoleAssignment, 0, len(m.roles))
	for _, a := range m.roles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Role < out[j].Role
	})
	return out, nil
}

// Reset clears all data. Used by scenario loading.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees = make(map[payroll.EmployeeID]payroll.Employee)
	m.attendance = make(map[attendanceKey]payroll.AttendanceRecord)
	m.wages = make(map[payroll.WageID]payroll.WageRecord)
	m.wageOrder = nil
	m.roles = make(map[roleKey]payroll.RoleAssignment)
	return nil
}
