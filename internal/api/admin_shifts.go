package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/timetrak/client/internal/domain"
)

func (s *AdminService) ListShifts(ctx context.Context, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts", p.Values())
}

func (s *AdminService) ListShiftsByStatus(ctx context.Context, status domain.ShiftStatus, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts/status/"+url.PathEscape(string(status)), p.Values())
}

// ListShiftsByPeriod 的 start 和 end 为 2006-01-02 格式的日期，含两端
func (s *AdminService) ListShiftsByPeriod(ctx context.Context, start, end string, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts/period", withPage(p, url.Values{"start": {start}, "end": {end}}))
}

func (s *AdminService) ListShiftsByEmployee(ctx context.Context, employeeID int64, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts/employee/"+itoa(employeeID), p.Values())
}

func (s *AdminService) ListShiftsByDepartment(ctx context.Context, departmentID int64, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts/department/"+itoa(departmentID), p.Values())
}

func (s *AdminService) ListShiftsThisWeek(ctx context.Context, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts/this-week", p.Values())
}

func (s *AdminService) ListShiftsThisMonth(ctx context.Context, p PageRequest) (domain.Page[domain.Shift], error) {
	return getPage[domain.Shift](ctx, s.c, "/admin/shifts/this-month", p.Values())
}

func (s *AdminService) GetShift(ctx context.Context, shiftID int64) (*domain.Shift, error) {
	return get[*domain.Shift](ctx, s.c, "/admin/shifts/"+itoa(shiftID), nil)
}

func (s *AdminService) CreateShift(ctx context.Context, req ShiftRequest) (*domain.Shift, error) {
	return call[*domain.Shift](ctx, s.c, http.MethodPost, "/admin/shifts", req)
}

func (s *AdminService) UpdateShift(ctx context.Context, shiftID int64, req ShiftRequest) (*domain.Shift, error) {
	return call[*domain.Shift](ctx, s.c, http.MethodPut, "/admin/shifts/"+itoa(shiftID), req)
}

func (s *AdminService) DeleteShift(ctx context.Context, shiftID int64) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: "/admin/shifts/" + itoa(shiftID)}, nil)
}

func (s *AdminService) ClockIn(ctx context.Context, req ClockRequest) (*domain.Shift, error) {
	return call[*domain.Shift](ctx, s.c, http.MethodPost, "/admin/shifts/clock-in", req)
}

func (s *AdminService) ClockOut(ctx context.Context, req ClockRequest) (*domain.Shift, error) {
	return call[*domain.Shift](ctx, s.c, http.MethodPost, "/admin/shifts/clock-out", req)
}

func (s *AdminService) BulkClockIn(ctx context.Context, req BulkClockRequest) (*BulkClockResult, error) {
	return call[*BulkClockResult](ctx, s.c, http.MethodPost, "/admin/shifts/bulk/clock-in", req)
}

func (s *AdminService) BulkClockOut(ctx context.Context, req BulkClockRequest) (*BulkClockResult, error) {
	return call[*BulkClockResult](ctx, s.c, http.MethodPost, "/admin/shifts/bulk/clock-out", req)
}
