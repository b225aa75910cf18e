package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/timetrak/client/internal/domain"
)

func (s *AdminService) ListJobs(ctx context.Context, p PageRequest) (domain.Page[domain.Job], error) {
	return getPage[domain.Job](ctx, s.c, "/admin/jobs", p.Values())
}

func (s *AdminService) ListJobsByDepartment(ctx context.Context, departmentID int64, p PageRequest) (domain.Page[domain.Job], error) {
	return getPage[domain.Job](ctx, s.c, "/admin/jobs/department/"+itoa(departmentID), p.Values())
}

func (s *AdminService) SearchJobs(ctx context.Context, query string, p PageRequest) (domain.Page[domain.Job], error) {
	return getPage[domain.Job](ctx, s.c, "/admin/jobs/search", withPage(p, url.Values{"query": {query}}))
}

func (s *AdminService) GetJob(ctx context.Context, jobID int64) (*domain.Job, error) {
	return get[*domain.Job](ctx, s.c, "/admin/jobs/"+itoa(jobID), nil)
}

func (s *AdminService) CreateJob(ctx context.Context, req JobRequest) (*domain.Job, error) {
	return call[*domain.Job](ctx, s.c, http.MethodPost, "/admin/jobs", req)
}

func (s *AdminService) UpdateJob(ctx context.Context, jobID int64, req JobRequest) (*domain.Job, error) {
	return call[*domain.Job](ctx, s.c, http.MethodPut, "/admin/jobs/"+itoa(jobID), req)
}

func (s *AdminService) DeleteJob(ctx context.Context, jobID int64) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: "/admin/jobs/" + itoa(jobID)}, nil)
}

func (s *AdminService) ListEmployeeJobs(ctx context.Context, employeeID int64) ([]domain.EmployeeJob, error) {
	return getList[domain.EmployeeJob](ctx, s.c, "/admin/employee-jobs/employee/"+itoa(employeeID), nil)
}

func (s *AdminService) AssignJob(ctx context.Context, req AssignJobRequest) (*domain.EmployeeJob, error) {
	return call[*domain.EmployeeJob](ctx, s.c, http.MethodPost, "/admin/employee-jobs", req)
}

func (s *AdminService) UnassignJob(ctx context.Context, employeeJobID int64) error {
	return s.c.do(ctx, request{method: http.MethodDelete, path: "/admin/employee-jobs/" + itoa(employeeJobID)}, nil)
}

func (s *AdminService) UpdateWageOverride(ctx context.Context, employeeJobID int64, req WageOverrideRequest) (*domain.EmployeeJob, error) {
	return call[*domain.EmployeeJob](ctx, s.c, http.MethodPatch, "/admin/employee-jobs/"+itoa(employeeJobID)+"/wage", req)
}
