package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/payroll"
)

func wageFor(emp string, total string, paid bool) payroll.WageRecord {
	return payroll.WageRecord{
		EmployeeID: payroll.EmployeeID(emp),
		TotalWage:  payroll.MustMoney(total),
		Paid:       paid,
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := payroll.Summarize(nil)

	assert.True(t, s.TotalPaid.IsZero())
	assert.True(t, s.TotalPending.IsZero())
	assert.True(t, s.AveragePaidWage.IsZero(), "average is zero when nothing is paid, not NaN")
	assert.Zero(t, s.UniqueEmployeesPaid)
}

func TestSummarize_SplitsPaidAndPending(t *testing.T) {
	records := []payroll.WageRecord{
		wageFor("emp-1", "1000", true),
		wageFor("emp-2", "2000", true),
		wageFor("emp-3", "500", false),
		wageFor("emp-3", "750", false),
	}

	s := payroll.Summarize(records)

	assert.True(t, s.TotalPaid.Equal(payroll.MustMoney("3000")), "got %s", s.TotalPaid)
	assert.True(t, s.TotalPending.Equal(payroll.MustMoney("1250")), "got %s", s.TotalPending)
	assert.True(t, s.AveragePaidWage.Equal(payroll.MustMoney("1500")), "got %s", s.AveragePaidWage)
	assert.Equal(t, 2, s.UniqueEmployeesPaid)
}

func TestSummarize_UniqueCountsEmployeesNotRecords(t *testing.T) {
	// Two paid records for the same employee count once
	records := []payroll.WageRecord{
		wageFor("emp-1", "1000", true),
		wageFor("emp-1", "1200", true),
	}

	s := payroll.Summarize(records)

	assert.Equal(t, 1, s.UniqueEmployeesPaid)
	// Average still divides by record count, not employee count
	assert.True(t, s.AveragePaidWage.Equal(payroll.MustMoney("1100")), "got %s", s.AveragePaidWage)
}

func TestSummarize_OrderIndependent(t *testing.T) {
	records := []payroll.WageRecord{
		wageFor("emp-1", "100", true),
		wageFor("emp-2", "-50", false),
		wageFor("emp-3", "300", true),
	}
	reversed := []payroll.WageRecord{records[2], records[1], records[0]}

	a := payroll.Summarize(records)
	b := payroll.Summarize(reversed)

	assert.True(t, a.TotalPaid.Equal(b.TotalPaid))
	assert.True(t, a.TotalPending.Equal(b.TotalPending))
	assert.True(t, a.AveragePaidWage.Equal(b.AveragePaidWage))
	assert.Equal(t, a.UniqueEmployeesPaid, b.UniqueEmployeesPaid)
}

func TestSummarize_NegativeTotalsFlowThrough(t *testing.T) {
	// A pending record with advances beyond earnings reduces the pending sum
	records := []payroll.WageRecord{
		wageFor("emp-1", "500", false),
		wageFor("emp-2", "-200", false),
	}

	s := payroll.Summarize(records)

	assert.True(t, s.TotalPending.Equal(payroll.MustMoney("300")), "got %s", s.TotalPending)
}
