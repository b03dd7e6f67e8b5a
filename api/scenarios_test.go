/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario loader leaves the store in the state it
	advertises:
	- Employees are created
	- Attendance days are recorded
	- Wage records are calculated (and pre-paid where the scenario says so)
	- Role grants are in place

These tests double as integration checks for the seeding helpers.
*/
package api

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

func newScenarioHandler() *Handler {
	return NewHandler(store.NewMemory(), zerolog.Nop())
}

func TestSmallCrewScenario(t *testing.T) {
	ctx := context.Background()
	h := newScenarioHandler()

	require.NoError(t, h.loadSmallCrewScenario(ctx))

	employees, err := h.Store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 3)

	// Every worker has five recorded days
	for _, emp := range employees {
		records, err := h.Store.ListAttendance(ctx, emp.ID)
		require.NoError(t, err)
		assert.Len(t, records, 5, "employee %s", emp.FullName)
	}
}

func TestMonthEndScenario(t *testing.T) {
	ctx := context.Background()
	h := newScenarioHandler()

	require.NoError(t, h.loadMonthEndScenario(ctx))

	wages, err := h.Store.ListWages(ctx)
	require.NoError(t, err)
	require.Len(t, wages, 2)

	paid := 0
	for _, w := range wages {
		assert.Equal(t, payroll.CalculationMonthly, w.CalculationType)
		if w.Paid {
			paid++
			assert.NotNil(t, w.PaidAt)
		}
	}
	assert.Equal(t, 1, paid, "exactly one wage record is pre-paid")
}

func TestSelfServiceScenario_Visibility(t *testing.T) {
	ctx := context.Background()
	h := newScenarioHandler()

	require.NoError(t, h.loadSelfServiceScenario(ctx))

	roles, err := h.Store.RolesForUser(ctx, "user-admin")
	require.NoError(t, err)
	assert.Equal(t, []payroll.Role{payroll.RoleAdmin}, roles)

	// Both linked employees got a weekly wage record
	wages, err := h.Store.ListWages(ctx)
	require.NoError(t, err)
	assert.Len(t, wages, 2)
}
