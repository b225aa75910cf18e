package store

import (
	"context"
	"sync"

	"github.com/timetrak/client/internal/domain"
)

// Dashboard 的每个区块独立加载，一个区块失败不影响其他区块
type Dashboard struct {
	Counts         domain.EmployeeCounts
	CountsErr      error
	CurrentPeriod  *domain.PaymentPeriod
	PeriodErr      error
	ActiveShifts   []domain.Shift
	ShiftsErr      error
	RecentPayments []domain.Payment
	PaymentsErr    error
}

func (d *Dashboard) Errs() []error {
	var errs []error
	for _, err := range []error{d.CountsErr, d.PeriodErr, d.ShiftsErr, d.PaymentsErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *Store) Dashboard(ctx context.Context) *Dashboard {
	d := &Dashboard{}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		d.Counts, d.CountsErr = s.EmployeeCounts(ctx)
	}()
	go func() {
		defer wg.Done()
		d.CurrentPeriod, d.PeriodErr = s.CurrentPeriod(ctx)
	}()
	go func() {
		defer wg.Done()
		d.ActiveShifts, d.ShiftsErr = s.ActiveShifts(ctx, dashboardListSize)
	}()
	go func() {
		defer wg.Done()
		d.RecentPayments, d.PaymentsErr = s.RecentPayments(ctx, dashboardListSize)
	}()
	wg.Wait()

	for _, err := range d.Errs() {
		s.logger.Warn("dashboard section failed", "error", err)
	}
	return d
}
