/*
handlers_test.go - HTTP-level tests for the API surface

Exercises the full stack: router, auth middleware, scoped store,
engine, and error-to-status mapping, against the in-memory store.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

var testSecret = []byte("test-secret")

func newTestServer(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(mem, zerolog.Nop())
	router := NewRouter(h, RouterOptions{
		JWTSecret:   testSecret,
		CORSOrigins: []string{"*"},
	})
	return router, mem
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := IssueToken(testSecret, "user-admin", []payroll.Role{payroll.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	return tok
}

func employeeToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := IssueToken(testSecret, userID, []payroll.Role{payroll.RoleEmployee}, time.Hour)
	require.NoError(t, err)
	return tok
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// createEmployee posts a standard rate card as admin and returns the DTO.
func createEmployee(t *testing.T, router http.Handler, userID string) EmployeeDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/employees", adminToken(t), CreateEmployeeRequest{
		UserID:       userID,
		FullName:     "Rahim Uddin",
		DailyWage:    "500",
		OvertimeRate: "50",
		HalfDayRate:  "250",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[EmployeeDTO](t, rec)
}

func recordDay(t *testing.T, router http.Handler, empID, day, status, overtime, advance string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, router, http.MethodPost, "/api/attendance", adminToken(t), CreateAttendanceRequest{
		EmployeeID:    empID,
		Date:          day,
		Status:        status,
		OvertimeHours: overtime,
		AdvanceTaken:  advance,
	})
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestCreateEmployee_AdminOnly(t *testing.T) {
	router, _ := newTestServer(t)

	// Admin succeeds
	emp := createEmployee(t, router, "")
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, "active", emp.Status)
	assert.Equal(t, "500", emp.DailyWage)

	// Employee role is denied
	rec := doJSON(t, router, http.MethodPost, "/api/employees", employeeToken(t, "user-x"), CreateEmployeeRequest{
		FullName: "Someone", DailyWage: "100", OvertimeRate: "10", HalfDayRate: "50",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Anonymous is denied too
	rec = doJSON(t, router, http.MethodPost, "/api/employees", "", CreateEmployeeRequest{
		FullName: "Someone", DailyWage: "100", OvertimeRate: "10", HalfDayRate: "50",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateEmployee_ValidationFailure(t *testing.T) {
	router, _ := newTestServer(t)

	// Missing name
	rec := doJSON(t, router, http.MethodPost, "/api/employees", adminToken(t), CreateEmployeeRequest{
		DailyWage: "500", OvertimeRate: "50", HalfDayRate: "250",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-decimal wage
	rec = doJSON(t, router, http.MethodPost, "/api/employees", adminToken(t), CreateEmployeeRequest{
		FullName: "X", DailyWage: "lots", OvertimeRate: "50", HalfDayRate: "250",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmployees_ScopedToCaller(t *testing.T) {
	// GIVEN: One employee linked to user-rahim, one unlinked
	// WHEN: Listing as admin, as rahim, and as a stranger
	// THEN: 2 rows, 1 row, 0 rows

	router, _ := newTestServer(t)
	createEmployee(t, router, "user-rahim")
	createEmployee(t, router, "")

	rec := doJSON(t, router, http.MethodGet, "/api/employees", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]EmployeeDTO](t, rec), 2)

	rec = doJSON(t, router, http.MethodGet, "/api/employees", employeeToken(t, "user-rahim"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]EmployeeDTO](t, rec)
	require.Len(t, own, 1)
	assert.Equal(t, "user-rahim", own[0].UserID)

	rec = doJSON(t, router, http.MethodGet, "/api/employees", employeeToken(t, "user-stranger"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]EmployeeDTO](t, rec))
}

func TestGetEmployee_HiddenRowIs404(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")

	rec := doJSON(t, router, http.MethodGet, "/api/employees/"+emp.ID, employeeToken(t, "user-stranger"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "hidden must look exactly like missing")
}

// =============================================================================
// AUTH
// =============================================================================

func TestBadToken_Unauthorized(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/api/me", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[MeDTO](t, rec)
	assert.Equal(t, "user-admin", me.UserID)
	assert.Equal(t, []string{"admin"}, me.Roles)
	assert.True(t, me.Authenticated)

	rec = doJSON(t, router, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	anon := decode[MeDTO](t, rec)
	assert.False(t, anon.Authenticated)
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

func TestCreateAttendance_DuplicateDay409(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")

	rec := recordDay(t, router, emp.ID, "2025-06-02", "present", "0", "0")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = recordDay(t, router, emp.ID, "2025-06-02", "absent", "0", "0")
	require.Equal(t, http.StatusConflict, rec.Code)

	// The conflict response names the offending pair
	resp := decode[ErrorResponse](t, rec)
	assert.Contains(t, resp.Details, emp.ID)
	assert.Contains(t, resp.Details, "2025-06-02")
}

func TestCreateAttendance_InactiveEmployee400(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")

	// Deactivate the employee; history stays, new days are rejected
	rec := doJSON(t, router, http.MethodPut, "/api/employees/"+emp.ID, adminToken(t), UpdateEmployeeRequest{
		FullName:     emp.FullName,
		DailyWage:    emp.DailyWage,
		OvertimeRate: emp.OvertimeRate,
		HalfDayRate:  emp.HalfDayRate,
		Status:       "inactive",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = recordDay(t, router, emp.ID, "2025-06-02", "present", "0", "0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAttendance_UnknownEmployee404(t *testing.T) {
	router, _ := newTestServer(t)

	rec := recordDay(t, router, "no-such-employee", "2025-06-02", "present", "0", "0")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAttendance_NonAdminForbidden(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "user-rahim")

	// Even the linked user cannot write their own attendance
	rec := doJSON(t, router, http.MethodPost, "/api/attendance", employeeToken(t, "user-rahim"), CreateAttendanceRequest{
		EmployeeID: emp.ID, Date: "2025-06-02", Status: "present",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListAttendance_RangeFilter(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")
	for _, day := range []string{"2025-06-01", "2025-06-02", "2025-06-04"} {
		rec := recordDay(t, router, emp.ID, day, "present", "0", "0")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/employees/"+emp.ID+"/attendance?from=2025-06-02&to=2025-06-04", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]AttendanceDTO](t, rec), 2)
}

// =============================================================================
// WAGE ENDPOINTS
// =============================================================================

func calculateWeek(t *testing.T, router http.Handler, empID string) WageDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/wages/calculate", adminToken(t), CalculateWageRequest{
		EmployeeID:      empID,
		PeriodStart:     "2025-06-02",
		PeriodEnd:       "2025-06-06",
		CalculationType: "weekly",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[WageDTO](t, rec)
}

func TestCalculateWage_MixedWeek(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")

	require.Equal(t, http.StatusCreated, recordDay(t, router, emp.ID, "2025-06-02", "present", "0", "0").Code)
	require.Equal(t, http.StatusCreated, recordDay(t, router, emp.ID, "2025-06-03", "half_day", "2", "0").Code)
	require.Equal(t, http.StatusCreated, recordDay(t, router, emp.ID, "2025-06-04", "absent", "0", "100").Code)

	wage := calculateWeek(t, router, emp.ID)

	assert.Equal(t, "750", wage.BaseWage)
	assert.Equal(t, "100", wage.OvertimeAmount)
	assert.Equal(t, "100", wage.AdvanceDeductions)
	assert.Equal(t, "750", wage.TotalWage)
	assert.False(t, wage.Paid)
}

func TestCalculateWage_UnknownEmployee404(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/wages/calculate", adminToken(t), CalculateWageRequest{
		EmployeeID: "missing", PeriodStart: "2025-06-02", PeriodEnd: "2025-06-06", CalculationType: "weekly",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculateWage_BadPeriod400(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/api/wages/calculate", adminToken(t), CalculateWageRequest{
		EmployeeID: emp.ID, PeriodStart: "2025-06-06", PeriodEnd: "2025-06-02", CalculationType: "weekly",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayWage_Idempotent(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "")
	require.Equal(t, http.StatusCreated, recordDay(t, router, emp.ID, "2025-06-02", "present", "0", "0").Code)
	wage := calculateWeek(t, router, emp.ID)

	rec := doJSON(t, router, http.MethodPost, "/api/wages/"+wage.ID+"/pay", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decode[WageDTO](t, rec)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaidAt)

	// Retried confirmation: 200, same paid_at
	rec = doJSON(t, router, http.MethodPost, "/api/wages/"+wage.ID+"/pay", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[WageDTO](t, rec)
	require.NotNil(t, again.PaidAt)
	assert.Equal(t, *paid.PaidAt, *again.PaidAt)
}

func TestPayWage_NonAdminForbidden(t *testing.T) {
	router, _ := newTestServer(t)
	emp := createEmployee(t, router, "user-rahim")
	wage := calculateWeek(t, router, emp.ID)

	rec := doJSON(t, router, http.MethodPost, "/api/wages/"+wage.ID+"/pay", employeeToken(t, "user-rahim"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Already-paid records are no different: the idempotent retry path is
	// for admins, not a read-around for the write gate
	rec = doJSON(t, router, http.MethodPost, "/api/wages/"+wage.ID+"/pay", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/wages/"+wage.ID+"/pay", employeeToken(t, "user-rahim"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestSummary(t *testing.T) {
	router, _ := newTestServer(t)
	a := createEmployee(t, router, "")
	b := createEmployee(t, router, "")

	require.Equal(t, http.StatusCreated, recordDay(t, router, a.ID, "2025-06-02", "present", "0", "0").Code)
	require.Equal(t, http.StatusCreated, recordDay(t, router, b.ID, "2025-06-02", "present", "0", "0").Code)

	paidWage := calculateWeek(t, router, a.ID)
	calculateWeek(t, router, b.ID)

	rec := doJSON(t, router, http.MethodPost, "/api/wages/"+paidWage.ID+"/pay", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/reports/summary", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[SummaryDTO](t, rec)

	assert.Equal(t, "500", summary.TotalPaid)
	assert.Equal(t, "500", summary.TotalPending)
	assert.Equal(t, 1, summary.UniqueEmployeesPaid)
	assert.Equal(t, "500", summary.AveragePaidWage)
}

// =============================================================================
// ROLES
// =============================================================================

func TestGrantRole_Flow(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/roles", adminToken(t), GrantRoleRequest{
		UserID: "user-rahim", Role: "employee",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate grant conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/roles", adminToken(t), GrantRoleRequest{
		UserID: "user-rahim", Role: "employee",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Non-admin cannot grant, not even to themselves
	rec = doJSON(t, router, http.MethodPost, "/api/roles", employeeToken(t, "user-rahim"), GrantRoleRequest{
		UserID: "user-rahim", Role: "admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin sees the grant list; the employee sees only their own grants
	rec = doJSON(t, router, http.MethodGet, "/api/roles", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]RoleAssignmentDTO](t, rec), 1)

	rec = doJSON(t, router, http.MethodGet, "/api/roles", employeeToken(t, "user-other"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]RoleAssignmentDTO](t, rec))
}
