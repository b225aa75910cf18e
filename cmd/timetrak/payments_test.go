package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/store"
)

var _ periodSource = (*store.Store)(nil)

type fakePeriods struct {
	completed *domain.PaymentPeriod
	err       error
	available []domain.PaymentPeriod
}

func (f fakePeriods) MostRecentCompletedPeriod(context.Context) (*domain.PaymentPeriod, error) {
	return f.completed, f.err
}

func (f fakePeriods) AvailablePeriods(context.Context) ([]domain.PaymentPeriod, error) {
	return f.available, f.err
}

func TestResolvePeriod_NoCompletedPeriod(t *testing.T) {
	// 服务端在第一个周期内会返回 null
	p, err := resolvePeriod(context.Background(), fakePeriods{}, 0)
	assert.Nil(t, p)
	assert.EqualError(t, err, "no completed period yet, pass -period")
}

func TestResolvePeriod(t *testing.T) {
	ctx := context.Background()
	src := fakePeriods{
		completed: &domain.PaymentPeriod{PeriodNumber: 5},
		available: []domain.PaymentPeriod{{PeriodNumber: 5}, {PeriodNumber: 6}},
	}

	p, err := resolvePeriod(ctx, src, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, p.PeriodNumber)

	p, err = resolvePeriod(ctx, src, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, p.PeriodNumber)

	_, err = resolvePeriod(ctx, src, 9)
	assert.EqualError(t, err, "period 9 is not available")

	boom := errors.New("boom")
	_, err = resolvePeriod(ctx, fakePeriods{err: boom}, 0)
	assert.ErrorIs(t, err, boom)
}
