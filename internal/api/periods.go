package api

import (
	"context"

	"github.com/timetrak/client/internal/domain"
)

type PeriodService struct {
	c *Client
}

func (s *PeriodService) Current(ctx context.Context) (*domain.PaymentPeriod, error) {
	return get[*domain.PaymentPeriod](ctx, s.c, "/periods/current", nil)
}

func (s *PeriodService) Available(ctx context.Context) ([]domain.PaymentPeriod, error) {
	return getList[domain.PaymentPeriod](ctx, s.c, "/periods/available", nil)
}

func (s *PeriodService) MostRecentCompleted(ctx context.Context) (*domain.PaymentPeriod, error) {
	return get[*domain.PaymentPeriod](ctx, s.c, "/periods/most-recent-completed", nil)
}
