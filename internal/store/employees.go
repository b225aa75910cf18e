package store

import (
	"context"
	"fmt"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/view"
	"golang.org/x/sync/errgroup"
)

// Employees 根据状态选择接口：搜索词优先，其次是部门，最后是标签页。
// 所选接口没有覆盖的部门和状态在返回的这一页上过滤
func (s *Store) Employees(ctx context.Context, st view.ListState) (domain.Page[domain.Employee], error) {
	return query.Fetch(ctx, s.cache, query.Query[domain.Page[domain.Employee]]{
		Key: EmployeesKey(st),
		Fn: func(ctx context.Context) (domain.Page[domain.Employee], error) {
			p := pageOf(st.Page, st.PageSize())
			admin := s.api.Admin()
			status := domain.EmployeeStatus(tabStatus(st.Tab))

			switch {
			case st.Search != "":
				page, err := admin.SearchEmployees(ctx, st.Search, status, p)
				if err != nil || st.DepartmentID == 0 {
					return page, err
				}
				return filterPage(page, func(e domain.Employee) bool { return e.DepartmentID == st.DepartmentID }), nil
			case st.DepartmentID > 0:
				page, err := admin.ListEmployeesByDepartment(ctx, st.DepartmentID, p)
				if err != nil || status == "" {
					return page, err
				}
				return filterPage(page, func(e domain.Employee) bool { return e.Status == status }), nil
			case status != "":
				return admin.ListEmployeesByStatus(ctx, status, p)
			default:
				return admin.ListEmployees(ctx, p)
			}
		},
	})
}

// DepartmentEmployees 为级联下拉框提供选项；未选部门时不发请求
func (s *Store) DepartmentEmployees(ctx context.Context, picker view.EmployeePicker) ([]domain.Employee, error) {
	if !picker.Enabled() {
		return nil, nil
	}
	return query.Fetch(ctx, s.cache, query.Query[[]domain.Employee]{
		Key: DepartmentEmployeesKey(picker.DepartmentID),
		Fn: func(ctx context.Context) ([]domain.Employee, error) {
			page, err := s.api.Admin().ListEmployeesByDepartment(ctx, picker.DepartmentID, pageOf(0, lookupPageSize))
			if err != nil {
				return nil, err
			}
			return page.Content, nil
		},
	})
}

func (s *Store) Employee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return query.Fetch(ctx, s.cache, query.Query[*domain.Employee]{
		Key: EmployeeKey(employeeID),
		Fn: func(ctx context.Context) (*domain.Employee, error) {
			return s.api.Admin().GetEmployee(ctx, employeeID)
		},
	})
}

// EmployeeCounts 并发发出 5 个请求并等待全部完成。计数允许短暂偏差，
// 所以新鲜期更长，且不在焦点恢复时重新请求
func (s *Store) EmployeeCounts(ctx context.Context) (domain.EmployeeCounts, error) {
	return query.Fetch(ctx, s.cache, query.Query[domain.EmployeeCounts]{
		Key:     EmployeeCountsKey(),
		Options: []query.Option{query.StaleTime(s.countsStale), query.RefetchOnFocus(false)},
		Fn:      s.fetchEmployeeCounts,
	})
}

func (s *Store) fetchEmployeeCounts(ctx context.Context) (domain.EmployeeCounts, error) {
	var counts domain.EmployeeCounts
	admin := s.api.Admin()
	probe := pageOf(0, 1)

	targets := []struct {
		status domain.EmployeeStatus
		dst    *int64
	}{
		{"", &counts.All},
		{domain.EmployeeStatusPending, &counts.Pending},
		{domain.EmployeeStatusActive, &counts.Active},
		{domain.EmployeeStatusDeactivated, &counts.Deactivated},
		{domain.EmployeeStatusRejected, &counts.Rejected},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			var (
				page domain.Page[domain.Employee]
				err  error
			)
			if t.status == "" {
				page, err = admin.ListEmployees(gctx, probe)
			} else {
				page, err = admin.ListEmployeesByStatus(gctx, t.status, probe)
			}
			if err != nil {
				return fmt.Errorf("count %s employees: %w", countLabel(t.status), err)
			}
			// 每个 goroutine 只写自己的字段
			*t.dst = page.TotalElements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.EmployeeCounts{}, err
	}
	return counts, nil
}

func countLabel(status domain.EmployeeStatus) string {
	if status == "" {
		return "all"
	}
	return string(status)
}

func tabStatus(tab string) string {
	if tab == "" || tab == view.TabAll {
		return ""
	}
	return tab
}

func (s *Store) RegisterEmployee(ctx context.Context, req api.RegisterEmployeeRequest) (*domain.Employee, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Employee]{
		Name:           MutRegisterEmployee,
		Fn:             func(ctx context.Context) (*domain.Employee, error) { return s.api.Admin().RegisterEmployee(ctx, req) },
		Invalidates:    Invalidations[MutRegisterEmployee],
		SuccessMessage: fmt.Sprintf("Employee %s registered", req.Name),
		ErrorMessage:   "Failed to register employee",
	})
}

func (s *Store) ApproveEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transitionEmployee(ctx, MutApproveEmployee, "approved", employeeID, s.api.Admin().ApproveEmployee)
}

func (s *Store) RejectEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transitionEmployee(ctx, MutRejectEmployee, "rejected", employeeID, s.api.Admin().RejectEmployee)
}

func (s *Store) ActivateEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transitionEmployee(ctx, MutActivateEmployee, "activated", employeeID, s.api.Admin().ActivateEmployee)
}

func (s *Store) DeactivateEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transitionEmployee(ctx, MutDeactivateEmployee, "deactivated", employeeID, s.api.Admin().DeactivateEmployee)
}

func (s *Store) transitionEmployee(ctx context.Context, name, verb string, employeeID int64, fn func(context.Context, int64) (*domain.Employee, error)) (*domain.Employee, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Employee]{
		Name:           name,
		Fn:             func(ctx context.Context) (*domain.Employee, error) { return fn(ctx, employeeID) },
		Invalidates:    Invalidations[name],
		SuccessMessage: fmt.Sprintf("Employee %d %s", employeeID, verb),
		ErrorMessage:   fmt.Sprintf("Failed to update employee %d", employeeID),
	})
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Name: MutDeleteEmployee,
		Fn: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Admin().DeleteEmployee(ctx, employeeID)
		},
		Invalidates:    Invalidations[MutDeleteEmployee],
		SuccessMessage: fmt.Sprintf("Employee %d deleted", employeeID),
		ErrorMessage:   "Failed to delete employee",
	})
	return err
}
