package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/payroll"
)

func TestPeriod_Validate(t *testing.T) {
	assert.NoError(t, period("2025-06-02", "2025-06-06").Validate())
	assert.NoError(t, period("2025-06-02", "2025-06-02").Validate(), "single-day periods are valid")
	assert.ErrorIs(t, period("2025-06-06", "2025-06-02").Validate(), payroll.ErrInvalidPeriod)
	assert.ErrorIs(t, payroll.Period{}.Validate(), payroll.ErrInvalidPeriod)
}

func TestPeriod_ContainsInclusive(t *testing.T) {
	p := period("2025-06-02", "2025-06-06")

	assert.True(t, p.Contains(date("2025-06-02")), "start is inside")
	assert.True(t, p.Contains(date("2025-06-06")), "end is inside")
	assert.True(t, p.Contains(date("2025-06-04")))
	assert.False(t, p.Contains(date("2025-06-01")))
	assert.False(t, p.Contains(date("2025-06-07")))
}

func TestPeriod_Days(t *testing.T) {
	assert.Equal(t, 1, period("2025-06-02", "2025-06-02").Days())
	assert.Equal(t, 5, period("2025-06-02", "2025-06-06").Days())
	assert.Equal(t, 31, payroll.MonthPeriod(2025, time.May).Days())
	assert.Equal(t, 28, payroll.MonthPeriod(2025, time.February).Days())
	assert.Equal(t, 29, payroll.MonthPeriod(2024, time.February).Days())
}

func TestMonthPeriod(t *testing.T) {
	p := payroll.MonthPeriod(2025, time.June)

	assert.Equal(t, "2025-06-01", p.Start.String())
	assert.Equal(t, "2025-06-30", p.End.String())

	// December rolls into the next year correctly
	dec := payroll.MonthPeriod(2025, time.December)
	assert.Equal(t, "2025-12-31", dec.End.String())
}

func TestWeekPeriod_MondayBased(t *testing.T) {
	// 2025-06-04 is a Wednesday
	p := payroll.WeekPeriod(date("2025-06-04"))

	assert.Equal(t, "2025-06-02", p.Start.String())
	assert.Equal(t, "2025-06-08", p.End.String())

	// A Monday is its own week start; a Sunday belongs to the prior Monday
	mon := payroll.WeekPeriod(date("2025-06-02"))
	assert.Equal(t, "2025-06-02", mon.Start.String())
	sun := payroll.WeekPeriod(date("2025-06-08"))
	assert.Equal(t, "2025-06-02", sun.Start.String())
}
