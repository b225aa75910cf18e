package store

import (
	"context"
	"fmt"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/view"
)

const (
	PeriodsAvailable           = "available"
	PeriodsCurrent             = "current"
	PeriodsMostRecentCompleted = "most-recent-completed"
)

func (s *Store) Payments(ctx context.Context, st view.ListState) (domain.Page[domain.Payment], error) {
	return query.Fetch(ctx, s.cache, query.Query[domain.Page[domain.Payment]]{
		Key: PaymentsKey(st),
		Fn: func(ctx context.Context) (domain.Page[domain.Payment], error) {
			admin := s.api.Admin()
			p := pageOf(st.Page, st.PageSize())
			status := tabStatus(st.Tab)

			var (
				page          domain.Page[domain.Payment]
				statusApplied bool
				err           error
			)
			switch {
			case st.Period != nil:
				page, err = admin.ListPaymentsByPeriod(ctx, st.Period.PeriodNumber, p)
			case st.EmployeeID > 0:
				page, err = admin.ListPaymentsByEmployee(ctx, st.EmployeeID, p)
			case status != "":
				page, err = admin.ListPaymentsByStatus(ctx, domain.PaymentStatus(status), p)
				statusApplied = true
			default:
				page, err = admin.ListPayments(ctx, p)
			}
			if err != nil || statusApplied || status == "" {
				return page, err
			}
			out := make([]domain.Payment, 0, len(page.Content))
			for _, pm := range page.Content {
				if string(pm.Status) == status {
					out = append(out, pm)
				}
			}
			page.Content = out
			return page, nil
		},
	})
}

func (s *Store) RecentPayments(ctx context.Context, size int) ([]domain.Payment, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]domain.Payment]{
		Key: RecentPaymentsKey(size),
		Fn: func(ctx context.Context) ([]domain.Payment, error) {
			page, err := s.api.Admin().ListPayments(ctx, api.PageRequest{Size: size, SortBy: "id", SortDir: "desc"})
			if err != nil {
				return nil, err
			}
			return page.Content, nil
		},
	})
}

// CalculatePayments 在同一次计算在途时拒绝再次提交
func (s *Store) CalculatePayments(ctx context.Context, period domain.PaymentPeriod) (*api.CalculatePeriodResult, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*api.CalculatePeriodResult]{
		Name: MutCalculatePayments,
		Fn: func(ctx context.Context) (*api.CalculatePeriodResult, error) {
			return s.api.Admin().CalculatePeriod(ctx, api.CalculatePeriodRequest{
				PeriodStart: period.PeriodStart,
				PeriodEnd:   period.PeriodEnd,
			})
		},
		Invalidates:    Invalidations[MutCalculatePayments],
		SuccessMessage: fmt.Sprintf("Payments calculated for %s", periodLabel(period)),
		ErrorMessage:   "Failed to calculate payments",
		Exclusive:      true,
	})
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Payment]{
		Name: MutUpdatePayment,
		Fn: func(ctx context.Context) (*domain.Payment, error) {
			return s.api.Admin().UpdatePaymentStatus(ctx, paymentID, api.PaymentStatusRequest{Status: status})
		},
		Invalidates:    Invalidations[MutUpdatePayment],
		SuccessMessage: fmt.Sprintf("Payment %d marked %s", paymentID, status),
		ErrorMessage:   "Failed to update payment status",
	})
}

// ExportPayments 不经过缓存，文件内容由服务端生成
func (s *Store) ExportPayments(ctx context.Context, req api.ExportRequest) (*api.Download, error) {
	dl, err := s.api.Admin().ExportPayments(ctx, req)
	if err != nil {
		s.cache.Notifier().Error(notify.Message(err, "Failed to export payments"))
		return nil, err
	}
	return dl, nil
}

func (s *Store) AvailablePeriods(ctx context.Context) ([]domain.PaymentPeriod, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]domain.PaymentPeriod]{
		Key: PeriodsKey(PeriodsAvailable),
		Fn:  s.api.Periods().Available,
	})
}

func (s *Store) CurrentPeriod(ctx context.Context) (*domain.PaymentPeriod, error) {
	return query.Fetch(ctx, s.cache, query.Query[*domain.PaymentPeriod]{
		Key: PeriodsKey(PeriodsCurrent),
		Fn:  s.api.Periods().Current,
	})
}

func (s *Store) MostRecentCompletedPeriod(ctx context.Context) (*domain.PaymentPeriod, error) {
	return query.Fetch(ctx, s.cache, query.Query[*domain.PaymentPeriod]{
		Key: PeriodsKey(PeriodsMostRecentCompleted),
		Fn:  s.api.Periods().MostRecentCompleted,
	})
}

func periodLabel(p domain.PaymentPeriod) string {
	if p.DisplayLabel != "" {
		return p.DisplayLabel
	}
	return p.PeriodStart + " - " + p.PeriodEnd
}
