/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Implements all persistence interfaces (EmployeeStore, AttendanceStore,
  WageStore, RoleStore) using SQLite. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:   rate cards with optional owning user link
  attendance:  per-day entries, UNIQUE(employee_id, date)
  wages:       calculation snapshots; monetary columns are write-once
  user_roles:  role grants, UNIQUE(user_id, role)

CONSTRAINT MAPPING:
  The two unique indexes are the enforcement points for the domain's
  uniqueness rules. Driver-level UNIQUE failures are translated into
  payroll.DuplicateAttendanceError / payroll.ErrDuplicateRole so callers
  never see raw sqlite errors. Other driver failures are wrapped with
  payroll.ErrTransientStorage so callers can decide to retry.

MONEY AND DATES:
  Decimal amounts are stored as TEXT via decimal.String() to avoid float
  drift; calendar dates as YYYY-MM-DD; timestamps as RFC3339.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		full_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		daily_wage TEXT NOT NULL,
		overtime_rate TEXT NOT NULL,
		half_day_rate TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_user
		ON employees(user_id) WHERE user_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_employees_status
		ON employees(status);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		overtime_hours TEXT NOT NULL DEFAULT '0',
		advance_taken TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one attendance record per (employee, date).
	-- A second insert for the same pair must fail, not overwrite.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee_id, date);

	-- Range scans for the calculation engine (hot path)
	CREATE INDEX IF NOT EXISTS idx_attendance_employee_range
		ON attendance(employee_id, date DESC);

	CREATE TABLE IF NOT EXISTS wages (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		calculation_type TEXT NOT NULL,
		base_wage TEXT NOT NULL,
		overtime_amount TEXT NOT NULL,
		advance_deductions TEXT NOT NULL,
		total_wage TEXT NOT NULL,
		paid INTEGER NOT NULL DEFAULT 0,
		paid_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wages_employee
		ON wages(employee_id);
	CREATE INDEX IF NOT EXISTS idx_wages_paid
		ON wages(paid);

	CREATE TABLE IF NOT EXISTS user_roles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_user_roles_user_role
		ON user_roles(user_id, role);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee inserts or updates an employee record.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, user_id, full_name, email, phone, daily_wage, overtime_rate, half_day_rate, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			full_name = excluded.full_name,
			email = excluded.email,
			phone = excluded.phone,
			daily_wage = excluded.daily_wage,
			overtime_rate = excluded.overtime_rate,
			half_day_rate = excluded.half_day_rate,
			status = excluded.status
	`

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		nullString(e.UserID),
		e.FullName,
		nullString(e.Email),
		nullString(e.Phone),
		e.DailyWage.String(),
		e.OvertimeRate.String(),
		e.HalfDayRate.String(),
		e.Status,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return transient("save employee", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID. Returns (nil, nil) when missing.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, full_name, email, phone, daily_wage, overtime_rate, half_day_rate, status, created_at
		 FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, full_name, email, phone, daily_wage, overtime_rate, half_day_rate, status, created_at
		 FROM employees ORDER BY full_name`)
	if err != nil {
		return nil, transient("query employees", err)
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee record.
func (s *Store) DeleteEmployee(ctx context.Context, id payroll.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id); err != nil {
		return transient("delete employee", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (*payroll.Employee, error) {
	var (
		emp                                 payroll.Employee
		userID, email, phone                sql.NullString
		daily, overtime, halfDay, createdAt string
	)

	err := r.Scan(&emp.ID, &userID, &emp.FullName, &email, &phone,
		&daily, &overtime, &halfDay, &emp.Status, &createdAt)
	if err != nil {
		return nil, err
	}

	emp.UserID = userID.String
	emp.Email = email.String
	emp.Phone = phone.String
	emp.DailyWage = payroll.MustMoney(daily)
	emp.OvertimeRate = payroll.MustMoney(overtime)
	emp.HalfDayRate = payroll.MustMoney(halfDay)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// InsertAttendance adds a record. The employee must exist and be active;
// inactive employees are history-only. Uniqueness of (employee_id, date) is
// enforced by idx_attendance_employee_date; a conflict is translated into
// a DuplicateAttendanceError and the existing row stays intact.
func (s *Store) InsertAttendance(ctx context.Context, r payroll.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var status payroll.EmployeeStatus
	err := s.db.QueryRowContext(ctx,
		"SELECT status FROM employees WHERE id = ?", r.EmployeeID).Scan(&status)
	if err == sql.ErrNoRows {
		return payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return transient("check employee", err)
	}
	if status != payroll.StatusActive {
		return payroll.ErrEmployeeInactive
	}

	query := `
		INSERT INTO attendance (id, employee_id, date, status, overtime_hours, advance_taken, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, query,
		r.ID,
		r.EmployeeID,
		r.Date.String(),
		r.Status,
		r.OvertimeHours.String(),
		r.AdvanceTaken.String(),
		nullString(r.Notes),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err, "attendance.employee_id") {
			return &payroll.DuplicateAttendanceError{EmployeeID: r.EmployeeID, Date: r.Date}
		}
		return transient("insert attendance", err)
	}
	return nil
}

// ListAttendanceInRange returns records with date in [Start, End] inclusive.
func (s *Store) ListAttendanceInRange(ctx context.Context, id payroll.EmployeeID, period payroll.Period) ([]payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, date, status, overtime_hours, advance_taken, notes, created_at
		FROM attendance
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	return s.queryAttendance(ctx, query, id, period.Start.String(), period.End.String())
}

// ListAttendance returns all records for an employee, newest first.
func (s *Store) ListAttendance(ctx context.Context, id payroll.EmployeeID) ([]payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, date, status, overtime_hours, advance_taken, notes, created_at
		FROM attendance
		WHERE employee_id = ?
		ORDER BY date DESC
	`

	return s.queryAttendance(ctx, query, id)
}

func (s *Store) queryAttendance(ctx context.Context, query string, args ...any) ([]payroll.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transient("query attendance", err)
	}
	defer rows.Close()

	var records []payroll.AttendanceRecord
	for rows.Next() {
		var (
			r                       payroll.AttendanceRecord
			date, overtime, advance string
			notes                   sql.NullString
			createdAt               string
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &date, &r.Status,
			&overtime, &advance, &notes, &createdAt); err != nil {
			return nil, err
		}
		r.Date, _ = payroll.ParseDate(date)
		r.OvertimeHours = payroll.MustMoney(overtime)
		r.AdvanceTaken = payroll.MustMoney(advance)
		r.Notes = notes.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// WAGE STORE
// =============================================================================

// InsertWage persists a calculation snapshot as a single atomic write.
// There is no update path for the monetary columns.
func (s *Store) InsertWage(ctx context.Context, w payroll.WageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO wages (id, employee_id, period_start, period_end, calculation_type,
			base_wage, overtime_amount, advance_deductions, total_wage, paid, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var paidAt any
	if w.PaidAt != nil {
		paidAt = w.PaidAt.Format(time.RFC3339)
	}

	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		w.ID,
		w.EmployeeID,
		w.Period.Start.String(),
		w.Period.End.String(),
		w.CalculationType,
		w.BaseWage.String(),
		w.OvertimeAmount.String(),
		w.AdvanceDeductions.String(),
		w.TotalWage.String(),
		w.Paid,
		paidAt,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return transient("insert wage record", err)
	}
	return nil
}

// GetWage retrieves a wage record by ID. Returns (nil, nil) when missing.
func (s *Store) GetWage(ctx context.Context, id payroll.WageID) (*payroll.WageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wages, err := s.queryWages(ctx, `
		SELECT id, employee_id, period_start, period_end, calculation_type,
			base_wage, overtime_amount, advance_deductions, total_wage, paid, paid_at, created_at
		FROM wages WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(wages) == 0 {
		return nil, nil
	}
	return &wages[0], nil
}

// ListWages returns all wage records, newest first.
func (s *Store) ListWages(ctx context.Context) ([]payroll.WageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryWages(ctx, `
		SELECT id, employee_id, period_start, period_end, calculation_type,
			base_wage, overtime_amount, advance_deductions, total_wage, paid, paid_at, created_at
		FROM wages ORDER BY created_at DESC`)
}

// ListWagesByEmployee returns an employee's wage records, newest first.
func (s *Store) ListWagesByEmployee(ctx context.Context, id payroll.EmployeeID) ([]payroll.WageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryWages(ctx, `
		SELECT id, employee_id, period_start, period_end, calculation_type,
			base_wage, overtime_amount, advance_deductions, total_wage, paid, paid_at, created_at
		FROM wages WHERE employee_id = ? ORDER BY created_at DESC`, id)
}

// MarkWagePaid flips an unpaid record to paid. The WHERE paid = 0 guard
// makes a repeat call a no-op that never moves paid_at. A missing id
// returns ErrWageNotFound.
func (s *Store) MarkWagePaid(ctx context.Context, id payroll.WageID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE wages SET paid = 1, paid_at = ? WHERE id = ? AND paid = 0",
		at.Format(time.RFC3339), id)
	if err != nil {
		return transient("mark wage paid", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return transient("mark wage paid", err)
	}
	if n == 0 {
		// Zero rows matched: either the record is already paid (no-op)
		// or the id does not exist at all.
		var one int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM wages WHERE id = ?", id).Scan(&one)
		if err == sql.ErrNoRows {
			return payroll.ErrWageNotFound
		}
		if err != nil {
			return transient("mark wage paid", err)
		}
	}
	return nil
}

func (s *Store) queryWages(ctx context.Context, query string, args ...any) ([]payroll.WageRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transient("query wages", err)
	}
	defer rows.Close()

	var wages []payroll.WageRecord
	for rows.Next() {
		var (
			w                              payroll.WageRecord
			start, end                     string
			base, overtime, advance, total string
			paidAt                         sql.NullString
			createdAt                      string
		)
		if err := rows.Scan(&w.ID, &w.EmployeeID, &start, &end, &w.CalculationType,
			&base, &overtime, &advance, &total, &w.Paid, &paidAt, &createdAt); err != nil {
			return nil, err
		}
		w.Period.Start, _ = payroll.ParseDate(start)
		w.Period.End, _ = payroll.ParseDate(end)
		w.BaseWage = payroll.MustMoney(base)
		w.OvertimeAmount = payroll.MustMoney(overtime)
		w.AdvanceDeductions = payroll.MustMoney(advance)
		w.TotalWage = payroll.MustMoney(total)
		if paidAt.Valid {
			t, _ := time.Parse(time.RFC3339, paidAt.String)
			w.PaidAt = &t
		}
		w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		wages = append(wages, w)
	}
	return wages, rows.Err()
}

// =============================================================================
// ROLE STORE
// =============================================================================

// GrantRole adds a (user, role) pair. idx_user_roles_user_role enforces
// uniqueness; conflicts map to ErrDuplicateRole.
func (s *Store) GrantRole(ctx context.Context, a payroll.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO user_roles (id, user_id, role, created_at) VALUES (?, ?, ?, ?)",
		a.ID, a.UserID, a.Role, createdAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err, "user_roles.user_id") {
			return payroll.ErrDuplicateRole
		}
		return transient("grant role", err)
	}
	return nil
}

// RolesForUser returns the roles a user holds.
func (s *Store) RolesForUser(ctx context.Context, userID string) ([]payroll.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT role FROM user_roles WHERE user_id = ? ORDER BY role", userID)
	if err != nil {
		return nil, transient("query roles", err)
	}
	defer rows.Close()

	var roles []payroll.Role
	for rows.Next() {
		var r payroll.Role
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// ListRoleAssignments returns every (user, role) grant.
func (s *Store) ListRoleAssignments(ctx context.Context) ([]payroll.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, role, created_at FROM user_roles ORDER BY user_id, role")
	if err != nil {
		return nil, transient("query role assignments", err)
	}
	defer rows.Close()

	var assignments []payroll.RoleAssignment
	for rows.Next() {
		var (
			a         payroll.RoleAssignment
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Role, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"attendance", "wages", "user_roles", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// transient wraps a driver-level failure so callers can classify it with
// payroll.IsRetryable. Constraint violations are mapped to their domain
// errors before reaching this.
func transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, payroll.ErrTransientStorage, err)
}

// isUniqueConstraintError matches sqlite's message shape
// "UNIQUE constraint failed: table.col, table.col2" against the first
// column of the violated index.
func isUniqueConstraintError(err error, firstColumn string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, firstColumn)
}
