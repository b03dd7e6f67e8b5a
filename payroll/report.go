package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// REPORTING - Pure fold over the wage record set
// =============================================================================

// Summary holds payment-status statistics over a wage record set.
type Summary struct {
	TotalPaid           decimal.Decimal
	TotalPending        decimal.Decimal
	UniqueEmployeesPaid int
	AveragePaidWage     decimal.Decimal
}

// Summarize folds a wage record set into summary statistics. It is a pure
// function: deterministic, order-independent, safe to recompute on every
// read. An empty input yields an all-zero summary; the average is defined
// as zero when there are no paid records.
func Summarize(records []WageRecord) Summary {
	s := Summary{
		TotalPaid:       decimal.Zero,
		TotalPending:    decimal.Zero,
		AveragePaidWage: decimal.Zero,
	}

	paidCount := 0
	paidEmployees := make(map[EmployeeID]struct{})

	for _, w := range records {
		if w.Paid {
			s.TotalPaid = s.TotalPaid.Add(w.TotalWage)
			paidEmployees[w.EmployeeID] = struct{}{}
			paidCount++
		} else {
			s.TotalPending = s.TotalPending.Add(w.TotalWage)
		}
	}

	s.UniqueEmployeesPaid = len(paidEmployees)
	if paidCount > 0 {
		s.AveragePaidWage = s.TotalPaid.Div(decimal.NewFromInt(int64(paidCount)))
	}
	return s
}
