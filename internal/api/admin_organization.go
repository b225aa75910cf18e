package api

import (
	"context"
	"net/http"

	"github.com/timetrak/client/internal/domain"
)

func (s *AdminService) ListDepartments(ctx context.Context, p PageRequest) (domain.Page[domain.Department], error) {
	return getPage[domain.Department](ctx, s.c, "/admin/organization/departments", p.Values())
}

func (s *AdminService) GetDepartment(ctx context.Context, departmentID int64) (*domain.Department, error) {
	return get[*domain.Department](ctx, s.c, "/admin/organization/departments/"+itoa(departmentID), nil)
}

func (s *AdminService) CreateDepartment(ctx context.Context, req DepartmentRequest) (*domain.Department, error) {
	return call[*domain.Department](ctx, s.c, http.MethodPost, "/admin/organization/departments", req)
}

func (s *AdminService) UpdateDepartment(ctx context.Context, departmentID int64, req DepartmentRequest) (*domain.Department, error) {
	return call[*domain.Department](ctx, s.c, http.MethodPut, "/admin/organization/departments/"+itoa(departmentID), req)
}

func (s *AdminService) DeleteDepartment(ctx context.Context, departmentID int64) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: "/admin/organization/departments/" + itoa(departmentID)}, nil)
}
