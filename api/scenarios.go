/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, attendance
	history, wage calculations, and role grants that demonstrate specific
	features.

AVAILABLE SCENARIOS:

	small-crew:    Three daily-wage workers with a week of attendance
	month-end:     Full month of attendance plus calculated wages, some paid
	self-service:  Login-linked employees demonstrating row-level visibility

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees with rate cards
 3. Record attendance days
 4. Run wage calculations through the engine
 5. Optionally mark some wages paid and grant roles

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "month-end"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments;
	the router mounts them only when scenarios are enabled in config.

SEE ALSO:
  - handlers.go: Handler the loaders hang off
  - payroll/engine.go: Calculation logic exercised by the loaders
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-crew",
		Name:        "Small Crew",
		Description: "Three daily-wage workers with a week of attendance",
		Category:    "payroll",
	},
	{
		ID:          "month-end",
		Name:        "Month End",
		Description: "Full month of attendance with calculated wages, some already paid",
		Category:    "payroll",
	},
	{
		ID:          "self-service",
		Name:        "Self Service",
		Description: "Login-linked employees showing what each user can see",
		Category:    "access",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.resetStore(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-crew":
		err = h.loadSmallCrewScenario(r.Context())
	case "month-end":
		err = h.loadMonthEndScenario(r.Context())
	case "self-service":
		err = h.loadSelfServiceScenario(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q not found", req.ScenarioID))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.resetStore(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) resetStore(ctx context.Context) error {
	resetter, ok := h.Store.(interface{ Reset(context.Context) error })
	if !ok {
		return fmt.Errorf("store does not support reset")
	}
	return resetter.Reset(ctx)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seedEmployee writes an employee straight through the unscoped store.
func (h *Handler) seedEmployee(ctx context.Context, userID, name, daily, overtime, halfDay string) (payroll.Employee, error) {
	emp := payroll.Employee{
		ID:           payroll.EmployeeID(uuid.NewString()),
		UserID:       userID,
		FullName:     name,
		DailyWage:    payroll.MustMoney(daily),
		OvertimeRate: payroll.MustMoney(overtime),
		HalfDayRate:  payroll.MustMoney(halfDay),
		Status:       payroll.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	return emp, h.Store.SaveEmployee(ctx, emp)
}

func (h *Handler) seedDay(ctx context.Context, emp payroll.Employee, date string, status payroll.AttendanceStatus, overtimeHours, advance string) error {
	d, err := payroll.ParseDate(date)
	if err != nil {
		return err
	}
	return h.Store.InsertAttendance(ctx, payroll.AttendanceRecord{
		ID:            payroll.AttendanceID(uuid.NewString()),
		EmployeeID:    emp.ID,
		Date:          d,
		Status:        status,
		OvertimeHours: payroll.MustMoney(overtimeHours),
		AdvanceTaken:  payroll.MustMoney(advance),
		CreatedAt:     time.Now().UTC(),
	})
}

// loadSmallCrewScenario: three workers, one working week.
func (h *Handler) loadSmallCrewScenario(ctx context.Context) error {
	rahim, err := h.seedEmployee(ctx, "", "Rahim Uddin", "500", "50", "250")
	if err != nil {
		return err
	}
	karim, err := h.seedEmployee(ctx, "", "Karim Mia", "600", "60", "300")
	if err != nil {
		return err
	}
	salma, err := h.seedEmployee(ctx, "", "Salma Begum", "550", "55", "275")
	if err != nil {
		return err
	}

	week := []string{"2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06"}
	for i, day := range week {
		if err := h.seedDay(ctx, rahim, day, payroll.AttendancePresent, "0", "0"); err != nil {
			return err
		}

		// Karim misses Wednesday, works overtime Thursday
		status := payroll.AttendancePresent
		overtime := "0"
		if i == 2 {
			status = payroll.AttendanceAbsent
		}
		if i == 3 {
			overtime = "3"
		}
		if err := h.seedDay(ctx, karim, day, status, overtime, "0"); err != nil {
			return err
		}

		// Salma takes a half day Friday with a small advance
		status = payroll.AttendancePresent
		advance := "0"
		if i == 4 {
			status = payroll.AttendanceHalfDay
			advance = "200"
		}
		if err := h.seedDay(ctx, salma, day, status, "0", advance); err != nil {
			return err
		}
	}
	return nil
}

// loadMonthEndScenario: a month of attendance plus calculated wages,
// with one record already paid.
func (h *Handler) loadMonthEndScenario(ctx context.Context) error {
	rahim, err := h.seedEmployee(ctx, "", "Rahim Uddin", "500", "50", "250")
	if err != nil {
		return err
	}
	karim, err := h.seedEmployee(ctx, "", "Karim Mia", "600", "60", "300")
	if err != nil {
		return err
	}

	// Weekdays of May 2025
	start, _ := payroll.ParseDate("2025-05-01")
	for d := start; d.Time.Month() == time.May; d = d.AddDays(1) {
		wd := d.Time.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		day := d.String()
		if err := h.seedDay(ctx, rahim, day, payroll.AttendancePresent, "0", "0"); err != nil {
			return err
		}

		// Karim: absent on the 9th, overtime mid-month, advance on the 20th
		status := payroll.AttendancePresent
		overtime, advance := "0", "0"
		switch day {
		case "2025-05-09":
			status = payroll.AttendanceAbsent
		case "2025-05-15":
			overtime = "4"
		case "2025-05-20":
			advance = "1000"
		}
		if err := h.seedDay(ctx, karim, day, status, overtime, advance); err != nil {
			return err
		}
	}

	engine := payroll.NewEngine(h.Store, h.Log)
	period := payroll.MonthPeriod(2025, time.May)

	paidWage, err := engine.Calculate(ctx, rahim.ID, period, payroll.CalculationMonthly)
	if err != nil {
		return err
	}
	if _, err := engine.MarkPaid(ctx, paidWage.ID); err != nil {
		return err
	}
	_, err = engine.Calculate(ctx, karim.ID, period, payroll.CalculationMonthly)
	return err
}

// loadSelfServiceScenario: employees linked to logins, with roles, so the
// same data looks different depending on who asks.
func (h *Handler) loadSelfServiceScenario(ctx context.Context) error {
	rahim, err := h.seedEmployee(ctx, "user-rahim", "Rahim Uddin", "500", "50", "250")
	if err != nil {
		return err
	}
	salma, err := h.seedEmployee(ctx, "user-salma", "Salma Begum", "550", "55", "275")
	if err != nil {
		return err
	}

	grants := []payroll.RoleAssignment{
		{ID: uuid.NewString(), UserID: "user-admin", Role: payroll.RoleAdmin, CreatedAt: time.Now().UTC()},
		{ID: uuid.NewString(), UserID: "user-rahim", Role: payroll.RoleEmployee, CreatedAt: time.Now().UTC()},
		{ID: uuid.NewString(), UserID: "user-salma", Role: payroll.RoleEmployee, CreatedAt: time.Now().UTC()},
	}
	for _, g := range grants {
		if err := h.Store.GrantRole(ctx, g); err != nil {
			return err
		}
	}

	days := []string{"2025-06-02", "2025-06-03", "2025-06-04"}
	for _, day := range days {
		if err := h.seedDay(ctx, rahim, day, payroll.AttendancePresent, "0", "0"); err != nil {
			return err
		}
		if err := h.seedDay(ctx, salma, day, payroll.AttendancePresent, "0", "0"); err != nil {
			return err
		}
	}

	engine := payroll.NewEngine(h.Store, h.Log)
	period := payroll.Period{Start: mustDate("2025-06-02"), End: mustDate("2025-06-04")}
	for _, emp := range []payroll.Employee{rahim, salma} {
		if _, err := engine.Calculate(ctx, emp.ID, period, payroll.CalculationWeekly); err != nil {
			return err
		}
	}
	return nil
}

func mustDate(s string) payroll.Date {
	d, err := payroll.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
