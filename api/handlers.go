/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic. Handlers never make
  authorization decisions themselves: every request gets a store scoped
  to the calling principal and the row-level policy does the rest.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List employees (visible rows only)
    POST   /api/employees                 Create employee (admin)
    GET    /api/employees/{id}            Get employee
    PUT    /api/employees/{id}            Update employee (admin)
    DELETE /api/employees/{id}            Delete employee (admin)
    GET    /api/employees/{id}/attendance Attendance history
    GET    /api/employees/{id}/wages      Wage history

  Attendance:
    POST   /api/attendance                Record a day (admin)

  Wages:
    POST   /api/wages/calculate           Run a wage calculation (admin)
    GET    /api/wages                     List wage records
    GET    /api/wages/{id}                Get wage record
    POST   /api/wages/{id}/pay            Mark a wage record paid (admin)

  Reports:
    GET    /api/reports/summary           Paid/pending totals over visible rows

  Roles:
    GET    /api/roles                     List role grants (admin)
    POST   /api/roles                     Grant a role (admin)
    GET    /api/me                        Who am I

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator + decimal parsing)
  3. Scope the store to the principal on the request context
  4. Call domain logic (engine, report, store)
  5. Serialize response
  6. Map domain errors to HTTP status

ERROR HANDLING:
  - 400: Validation errors, invalid input, inactive employee
  - 403: Row-level policy denied a write
  - 404: Resource not found (or hidden, indistinguishable on purpose)
  - 409: Conflict (duplicate attendance day, duplicate role grant)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - authz/store.go: The scoped store handlers operate through
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/authz"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store payroll.Store
	Log   zerolog.Logger

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store.
func NewHandler(store payroll.Store, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

// scoped returns a store view restricted to the request's principal.
func (h *Handler) scoped(r *http.Request) *authz.Store {
	return authz.Scope(h.Store, authz.PrincipalFrom(r.Context()))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the employees visible to the caller.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.scoped(r).ListEmployees(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list employees")
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee. Hidden rows 404 like missing ones.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.scoped(r).GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get employee")
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	rates, err := parseRates(req.DailyWage, req.OvertimeRate, req.HalfDayRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rate", err)
		return
	}

	emp := payroll.Employee{
		ID:           payroll.EmployeeID(uuid.NewString()),
		UserID:       req.UserID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		DailyWage:    rates[0],
		OvertimeRate: rates[1],
		HalfDayRate:  rates[2],
		Status:       payroll.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := emp.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if err := h.scoped(r).SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err, "Failed to create employee")
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateEmployee replaces an employee's record.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	rates, err := parseRates(req.DailyWage, req.OvertimeRate, req.HalfDayRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rate", err)
		return
	}

	store := h.scoped(r)
	existing, err := store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get employee")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	emp := payroll.Employee{
		ID:           id,
		UserID:       req.UserID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		DailyWage:    rates[0],
		OvertimeRate: rates[1],
		HalfDayRate:  rates[2],
		Status:       payroll.EmployeeStatus(req.Status),
		CreatedAt:    existing.CreatedAt,
	}
	if err := emp.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if err := store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err, "Failed to update employee")
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	if err := h.scoped(r).DeleteEmployee(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete employee")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// CreateAttendance records one day of attendance. A second record for the
// same (employee, date) returns 409 and leaves the first untouched.
func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := payroll.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	overtime, err := parseMoney(req.OvertimeHours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid overtime_hours", err)
		return
	}
	advance, err := parseMoney(req.AdvanceTaken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid advance_taken", err)
		return
	}

	record := payroll.AttendanceRecord{
		ID:            payroll.AttendanceID(uuid.NewString()),
		EmployeeID:    payroll.EmployeeID(req.EmployeeID),
		Date:          date,
		Status:        payroll.AttendanceStatus(req.Status),
		OvertimeHours: overtime,
		AdvanceTaken:  advance,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if err := h.scoped(r).InsertAttendance(r.Context(), record); err != nil {
		writeDomainError(w, err, "Failed to record attendance")
		return
	}

	writeJSON(w, http.StatusCreated, toAttendanceDTO(record))
}

// ListAttendance returns an employee's attendance, optionally limited to
// ?from=YYYY-MM-DD&to=YYYY-MM-DD (inclusive on both ends).
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var (
		records []payroll.AttendanceRecord
		err     error
	)
	if from != "" || to != "" {
		period, perr := parsePeriod(from, to)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", perr)
			return
		}
		records, err = h.scoped(r).ListAttendanceInRange(r.Context(), id, period)
	} else {
		records, err = h.scoped(r).ListAttendance(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err, "Failed to list attendance")
		return
	}

	dtos := make([]AttendanceDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toAttendanceDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// WAGE HANDLERS
// =============================================================================

// CalculateWage runs the wage engine for one employee and period and
// persists the result as a new unpaid wage record.
func (h *Handler) CalculateWage(w http.ResponseWriter, r *http.Request) {
	var req CalculateWageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	engine := payroll.NewEngine(h.scoped(r), h.Log)
	record, err := engine.Calculate(r.Context(),
		payroll.EmployeeID(req.EmployeeID), period,
		payroll.CalculationType(req.CalculationType))
	if err != nil {
		writeDomainError(w, err, "Failed to calculate wage")
		return
	}

	writeJSON(w, http.StatusCreated, toWageDTO(*record))
}

// ListWages returns wage records visible to the caller, newest first.
func (h *Handler) ListWages(w http.ResponseWriter, r *http.Request) {
	wages, err := h.scoped(r).ListWages(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list wages")
		return
	}

	dtos := make([]WageDTO, 0, len(wages))
	for _, wg := range wages {
		dtos = append(dtos, toWageDTO(wg))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEmployeeWages returns one employee's wage records.
func (h *Handler) ListEmployeeWages(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))

	wages, err := h.scoped(r).ListWagesByEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to list wages")
		return
	}

	dtos := make([]WageDTO, 0, len(wages))
	for _, wg := range wages {
		dtos = append(dtos, toWageDTO(wg))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWage returns a single wage record.
func (h *Handler) GetWage(w http.ResponseWriter, r *http.Request) {
	id := payroll.WageID(chi.URLParam(r, "id"))

	wage, err := h.scoped(r).GetWage(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get wage record")
		return
	}
	if wage == nil {
		writeError(w, http.StatusNotFound, "Wage record not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toWageDTO(*wage))
}

// PayWage marks a wage record as paid. Repeating the call returns the
// record unchanged; there is no way back to unpaid.
func (h *Handler) PayWage(w http.ResponseWriter, r *http.Request) {
	id := payroll.WageID(chi.URLParam(r, "id"))

	engine := payroll.NewEngine(h.scoped(r), h.Log)
	record, err := engine.MarkPaid(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to mark wage paid")
		return
	}

	writeJSON(w, http.StatusOK, toWageDTO(*record))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSummary aggregates paid/pending totals over the wage records the
// caller can see. Admins get the company-wide picture; an employee gets
// a summary of their own records.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	wages, err := h.scoped(r).ListWages(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to load wage records")
		return
	}

	s := payroll.Summarize(wages)
	writeJSON(w, http.StatusOK, SummaryDTO{
		TotalPaid:           s.TotalPaid.String(),
		TotalPending:        s.TotalPending.String(),
		UniqueEmployeesPaid: s.UniqueEmployeesPaid,
		AveragePaidWage:     s.AveragePaidWage.String(),
	})
}

// =============================================================================
// ROLE HANDLERS
// =============================================================================

// ListRoles returns every role grant. Admin only; others see an empty list.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.scoped(r).ListRoleAssignments(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list roles")
		return
	}

	dtos := make([]RoleAssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, toRoleAssignmentDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GrantRole grants a role to a user. Duplicate grants return 409.
func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	var req GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	assignment := payroll.RoleAssignment{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Role:      payroll.Role(req.Role),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.scoped(r).GrantRole(r.Context(), assignment); err != nil {
		writeDomainError(w, err, "Failed to grant role")
		return
	}

	writeJSON(w, http.StatusCreated, toRoleAssignmentDTO(assignment))
}

// Me describes the calling principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFrom(r.Context())

	roles := make([]string, 0, len(p.Roles))
	for _, role := range p.Roles {
		roles = append(roles, string(role))
	}
	writeJSON(w, http.StatusOK, MeDTO{
		UserID:        p.UserID,
		Roles:         roles,
		Authenticated: p.Authenticated(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses. The concrete
// error message still reaches the client in Details so a duplicate
// attendance 409 names the offending (employee, date) pair.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, payroll.ErrDenied):
		writeError(w, http.StatusForbidden, "Operation not permitted", err)
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// parseMoney parses an optional decimal string; empty means zero.
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseRates(daily, overtime, halfDay string) ([3]decimal.Decimal, error) {
	var rates [3]decimal.Decimal
	for i, s := range []string{daily, overtime, halfDay} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return rates, err
		}
		rates[i] = d
	}
	return rates, nil
}

func parsePeriod(from, to string) (payroll.Period, error) {
	start, err := payroll.ParseDate(from)
	if err != nil {
		return payroll.Period{}, err
	}
	end, err := payroll.ParseDate(to)
	if err != nil {
		return payroll.Period{}, err
	}
	p := payroll.Period{Start: start, End: end}
	return p, p.Validate()
}
