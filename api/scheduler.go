/*
scheduler.go - Automated month-end wage run scheduler

PURPOSE:
  Periodically checks for closed months that have attendance on record
  but no monthly wage calculation yet, and runs the calculation
  automatically so payroll is ready when the admin logs in.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Targets the most recently closed calendar month
  - Skips employees that already have a monthly record for that period
  - Skips employees with no attendance in the period (nothing to pay)
  - Never marks anything paid; payment stays a manual admin action

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewWageRunScheduler(store, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CalculateWage endpoint (manual calculation)
  - payroll/engine.go: the calculation itself
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/payroll-engine/payroll"
)

// WageRunScheduler drives automated month-end wage calculation.
type WageRunScheduler struct {
	Store         payroll.Store
	Log           zerolog.Logger
	CheckInterval time.Duration
	Enabled       bool

	// Now is overridable for tests.
	Now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWageRunScheduler creates a scheduler over the unscoped store.
// Scheduled runs are system actions, not user actions, so they bypass
// the row-level policy the same way scenario seeding does.
func NewWageRunScheduler(store payroll.Store, log zerolog.Logger) *WageRunScheduler {
	return &WageRunScheduler{
		Store:         store,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *WageRunScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info().Msg("wage run scheduler disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Log.Info().Dur("interval", s.CheckInterval).Msg("wage run scheduler started")
}

// Stop stops the scheduler and waits for the current run to finish.
func (s *WageRunScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Log.Info().Msg("wage run scheduler stopped")
	}
}

func (s *WageRunScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.checkAndProcess()

	for {
		select {
		case <-s.ticker.C:
			s.checkAndProcess()
		case <-s.stop:
			return
		}
	}
}

func (s *WageRunScheduler) checkAndProcess() {
	ctx := context.Background()
	period := s.lastClosedMonth()

	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("scheduler: listing employees")
		return
	}

	engine := payroll.NewEngine(s.Store, s.Log)
	processed := 0
	skipped := 0

	for _, emp := range employees {
		if !emp.Active() {
			continue
		}

		done, err := s.alreadyCalculated(ctx, emp.ID, period)
		if err != nil {
			s.Log.Error().Err(err).Str("employee_id", string(emp.ID)).Msg("scheduler: checking existing records")
			continue
		}
		if done {
			skipped++
			continue
		}

		records, err := s.Store.ListAttendanceInRange(ctx, emp.ID, period)
		if err != nil {
			s.Log.Error().Err(err).Str("employee_id", string(emp.ID)).Msg("scheduler: reading attendance")
			continue
		}
		if len(records) == 0 {
			// No recorded days, nothing to pay
			continue
		}

		wage, err := engine.Calculate(ctx, emp.ID, period, payroll.CalculationMonthly)
		if err != nil {
			s.Log.Error().Err(err).Str("employee_id", string(emp.ID)).Msg("scheduler: calculating wage")
			continue
		}
		s.Log.Info().
			Str("employee_id", string(emp.ID)).
			Str("wage_id", string(wage.ID)).
			Str("period", period.String()).
			Str("total", wage.TotalWage.String()).
			Msg("scheduler: month-end wage calculated")
		processed++
	}

	if processed > 0 || skipped > 0 {
		s.Log.Info().Int("processed", processed).Int("skipped", skipped).Msg("scheduler: run complete")
	}
}

// alreadyCalculated reports whether a monthly record covering the period
// already exists, whether created by a previous run or by hand.
func (s *WageRunScheduler) alreadyCalculated(ctx context.Context, id payroll.EmployeeID, period payroll.Period) (bool, error) {
	wages, err := s.Store.ListWagesByEmployee(ctx, id)
	if err != nil {
		return false, err
	}
	for _, w := range wages {
		if w.CalculationType == payroll.CalculationMonthly && w.Period.Start.Equal(period.Start) {
			return true, nil
		}
	}
	return false, nil
}

// lastClosedMonth returns the most recently completed calendar month.
func (s *WageRunScheduler) lastClosedMonth() payroll.Period {
	now := s.Now().UTC()
	prev := now.AddDate(0, 0, -now.Day())
	return payroll.MonthPeriod(prev.Year(), prev.Month())
}

// RunNow triggers an immediate check (for testing/admin).
func (s *WageRunScheduler) RunNow() {
	s.checkAndProcess()
}
