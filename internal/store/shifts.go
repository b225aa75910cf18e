package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/view"
)

// 班次页除状态外的两个快捷标签
const (
	TabThisWeek  = "THIS_WEEK"
	TabThisMonth = "THIS_MONTH"
)

// Shifts 按 周期 > 员工 > 部门 > 标签页 的优先级选择接口；
// 没有被接口覆盖的状态标签和搜索词在返回的这一页上过滤
func (s *Store) Shifts(ctx context.Context, st view.ListState) (domain.Page[domain.Shift], error) {
	return query.Fetch(ctx, s.cache, query.Query[domain.Page[domain.Shift]]{
		Key: ShiftsKey(st),
		Fn: func(ctx context.Context) (domain.Page[domain.Shift], error) {
			page, statusApplied, err := s.fetchShifts(ctx, st)
			if err != nil {
				return page, err
			}
			status := tabStatus(st.Tab)
			if status == TabThisWeek || status == TabThisMonth {
				status = ""
			}
			if !statusApplied && status != "" {
				page = filterPage(page, func(sh domain.Shift) bool { return string(sh.Status) == status })
			}
			if st.Search != "" {
				needle := strings.ToLower(st.Search)
				page = filterPage(page, func(sh domain.Shift) bool {
					return strings.Contains(strings.ToLower(sh.EmployeeName), needle) ||
						strings.Contains(strings.ToLower(sh.JobTitle), needle) ||
						strings.Contains(strings.ToLower(sh.Notes), needle)
				})
			}
			return page, nil
		},
	})
}

func (s *Store) fetchShifts(ctx context.Context, st view.ListState) (domain.Page[domain.Shift], bool, error) {
	admin := s.api.Admin()
	p := pageOf(st.Page, st.PageSize())

	switch {
	case st.Period != nil:
		page, err := admin.ListShiftsByPeriod(ctx, st.Period.PeriodStart, st.Period.PeriodEnd, p)
		return page, false, err
	case st.EmployeeID > 0:
		page, err := admin.ListShiftsByEmployee(ctx, st.EmployeeID, p)
		return page, false, err
	case st.DepartmentID > 0:
		page, err := admin.ListShiftsByDepartment(ctx, st.DepartmentID, p)
		return page, false, err
	}

	switch tab := tabStatus(st.Tab); tab {
	case "":
		page, err := admin.ListShifts(ctx, p)
		return page, true, err
	case TabThisWeek:
		page, err := admin.ListShiftsThisWeek(ctx, p)
		return page, true, err
	case TabThisMonth:
		page, err := admin.ListShiftsThisMonth(ctx, p)
		return page, true, err
	default:
		page, err := admin.ListShiftsByStatus(ctx, domain.ShiftStatus(tab), p)
		return page, true, err
	}
}

func (s *Store) ActiveShifts(ctx context.Context, size int) ([]domain.Shift, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]domain.Shift]{
		Key: ActiveShiftsKey(size),
		Fn: func(ctx context.Context) ([]domain.Shift, error) {
			page, err := s.api.Admin().ListShiftsByStatus(ctx, domain.ShiftStatusActive, pageOf(0, size))
			if err != nil {
				return nil, err
			}
			return page.Content, nil
		},
	})
}

func (s *Store) Shift(ctx context.Context, shiftID int64) (*domain.Shift, error) {
	return query.Fetch(ctx, s.cache, query.Query[*domain.Shift]{
		Key: query.NewKey(FamilyShifts, "detail", shiftID),
		Fn: func(ctx context.Context) (*domain.Shift, error) {
			return s.api.Admin().GetShift(ctx, shiftID)
		},
	})
}

func (s *Store) CreateShift(ctx context.Context, req api.ShiftRequest) (*domain.Shift, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Shift]{
		Name:           MutCreateShift,
		Fn:             func(ctx context.Context) (*domain.Shift, error) { return s.api.Admin().CreateShift(ctx, req) },
		Invalidates:    Invalidations[MutCreateShift],
		SuccessMessage: "Shift created",
		ErrorMessage:   "Failed to create shift",
	})
}

func (s *Store) UpdateShift(ctx context.Context, shiftID int64, req api.ShiftRequest) (*domain.Shift, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Shift]{
		Name:           MutUpdateShift,
		Fn:             func(ctx context.Context) (*domain.Shift, error) { return s.api.Admin().UpdateShift(ctx, shiftID, req) },
		Invalidates:    Invalidations[MutUpdateShift],
		SuccessMessage: "Shift updated",
		ErrorMessage:   "Failed to update shift",
	})
}

func (s *Store) DeleteShift(ctx context.Context, shiftID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Name: MutDeleteShift,
		Fn: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Admin().DeleteShift(ctx, shiftID)
		},
		Invalidates:    Invalidations[MutDeleteShift],
		SuccessMessage: "Shift deleted",
		ErrorMessage:   "Failed to delete shift",
	})
	return err
}

func (s *Store) ClockIn(ctx context.Context, req api.ClockRequest) (*domain.Shift, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Shift]{
		Name:           MutClockIn,
		Fn:             func(ctx context.Context) (*domain.Shift, error) { return s.api.Admin().ClockIn(ctx, req) },
		Invalidates:    Invalidations[MutClockIn],
		SuccessMessage: "Clocked in",
		ErrorMessage:   "Failed to clock in",
	})
}

func (s *Store) ClockOut(ctx context.Context, req api.ClockRequest) (*domain.Shift, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Shift]{
		Name:           MutClockOut,
		Fn:             func(ctx context.Context) (*domain.Shift, error) { return s.api.Admin().ClockOut(ctx, req) },
		Invalidates:    Invalidations[MutClockOut],
		SuccessMessage: "Clocked out",
		ErrorMessage:   "Failed to clock out",
	})
}

// bulkClockMessage 按服务端结果报告成功和失败的数量
func bulkClockMessage(verb string) func(*api.BulkClockResult) string {
	return func(res *api.BulkClockResult) string {
		if res == nil {
			return verb
		}
		msg := fmt.Sprintf("%s %d %s", verb, len(res.Succeeded), plural(len(res.Succeeded), "assignment"))
		if len(res.Failed) > 0 {
			msg += fmt.Sprintf(", %d failed", len(res.Failed))
		}
		return msg
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (s *Store) BulkClockIn(ctx context.Context, req api.BulkClockRequest) (*api.BulkClockResult, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*api.BulkClockResult]{
		Name:         MutBulkClockIn,
		Fn:           func(ctx context.Context) (*api.BulkClockResult, error) { return s.api.Admin().BulkClockIn(ctx, req) },
		Invalidates:  Invalidations[MutBulkClockIn],
		Success:      bulkClockMessage("Clocked in"),
		ErrorMessage: "Bulk clock-in failed",
	})
}

func (s *Store) BulkClockOut(ctx context.Context, req api.BulkClockRequest) (*api.BulkClockResult, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*api.BulkClockResult]{
		Name:         MutBulkClockOut,
		Fn:           func(ctx context.Context) (*api.BulkClockResult, error) { return s.api.Admin().BulkClockOut(ctx, req) },
		Invalidates:  Invalidations[MutBulkClockOut],
		Success:      bulkClockMessage("Clocked out"),
		ErrorMessage: "Bulk clock-out failed",
	})
}
