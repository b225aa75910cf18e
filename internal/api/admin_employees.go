package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/timetrak/client/internal/domain"
)

// AdminService 对应 /admin 下的全部接口，每个方法映射一个端点
type AdminService struct {
	c *Client
}

func (s *AdminService) ListEmployees(ctx context.Context, p PageRequest) (domain.Page[domain.Employee], error) {
	return getPage[domain.Employee](ctx, s.c, "/admin/employees", p.Values())
}

func (s *AdminService) ListActiveEmployees(ctx context.Context, p PageRequest) (domain.Page[domain.Employee], error) {
	return getPage[domain.Employee](ctx, s.c, "/admin/employees/active", p.Values())
}

func (s *AdminService) ListEmployeesByStatus(ctx context.Context, status domain.EmployeeStatus, p PageRequest) (domain.Page[domain.Employee], error) {
	return getPage[domain.Employee](ctx, s.c, "/admin/employees/status/"+url.PathEscape(string(status)), p.Values())
}

func (s *AdminService) ListEmployeesByDepartment(ctx context.Context, departmentID int64, p PageRequest) (domain.Page[domain.Employee], error) {
	return getPage[domain.Employee](ctx, s.c, "/admin/employees/department/"+itoa(departmentID), p.Values())
}

// SearchEmployees 的 status 为空时在全部状态中搜索
func (s *AdminService) SearchEmployees(ctx context.Context, query string, status domain.EmployeeStatus, p PageRequest) (domain.Page[domain.Employee], error) {
	extra := url.Values{"query": {query}}
	if status != "" {
		extra.Set("status", string(status))
	}
	return getPage[domain.Employee](ctx, s.c, "/admin/employees/search", withPage(p, extra))
}

func (s *AdminService) GetEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return get[*domain.Employee](ctx, s.c, "/admin/employees/"+itoa(employeeID), nil)
}

func (s *AdminService) RegisterEmployee(ctx context.Context, req RegisterEmployeeRequest) (*domain.Employee, error) {
	return call[*domain.Employee](ctx, s.c, http.MethodPost, "/admin/employees/register", req)
}

func (s *AdminService) ApproveEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transition(ctx, employeeID, "approve")
}

func (s *AdminService) RejectEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transition(ctx, employeeID, "reject")
}

func (s *AdminService) ActivateEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transition(ctx, employeeID, "activate")
}

func (s *AdminService) DeactivateEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return s.transition(ctx, employeeID, "deactivate")
}

func (s *AdminService) DeleteEmployee(ctx context.Context, employeeID int64) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: "/admin/employees/" + itoa(employeeID)}, nil)
}

// 状态流转由服务端校验，客户端只发请求
func (s *AdminService) transition(ctx context.Context, employeeID int64, action string) (*domain.Employee, error) {
	return call[*domain.Employee](ctx, s.c, http.MethodPatch, "/admin/employees/"+itoa(employeeID)+"/"+action, nil)
}
