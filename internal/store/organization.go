package store

import (
	"context"
	"fmt"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/view"
)

func (s *Store) Departments(ctx context.Context, page, size int) (domain.Page[domain.Department], error) {
	if size <= 0 {
		size = view.DefaultPageSize
	}
	return query.Fetch(ctx, s.cache, query.Query[domain.Page[domain.Department]]{
		Key: DepartmentsKey(page, size),
		Fn: func(ctx context.Context) (domain.Page[domain.Department], error) {
			return s.api.Admin().ListDepartments(ctx, pageOf(page, size))
		},
	})
}

// AllDepartments 用于下拉框，只取第一页的大分页
func (s *Store) AllDepartments(ctx context.Context) ([]domain.Department, error) {
	page, err := s.Departments(ctx, 0, lookupPageSize)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func (s *Store) Department(ctx context.Context, departmentID int64) (*domain.Department, error) {
	return query.Fetch(ctx, s.cache, query.Query[*domain.Department]{
		Key: DepartmentKey(departmentID),
		Fn: func(ctx context.Context) (*domain.Department, error) {
			return s.api.Admin().GetDepartment(ctx, departmentID)
		},
	})
}

func (s *Store) CreateDepartment(ctx context.Context, req api.DepartmentRequest) (*domain.Department, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Department]{
		Name:           MutCreateDepartment,
		Fn:             func(ctx context.Context) (*domain.Department, error) { return s.api.Admin().CreateDepartment(ctx, req) },
		Invalidates:    Invalidations[MutCreateDepartment],
		SuccessMessage: fmt.Sprintf("Department %s created", req.Name),
		ErrorMessage:   "Failed to create department",
	})
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID int64, req api.DepartmentRequest) (*domain.Department, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Department]{
		Name: MutUpdateDepartment,
		Fn: func(ctx context.Context) (*domain.Department, error) {
			return s.api.Admin().UpdateDepartment(ctx, departmentID, req)
		},
		Invalidates:    Invalidations[MutUpdateDepartment],
		SuccessMessage: "Department updated",
		ErrorMessage:   "Failed to update department",
	})
}

func (s *Store) DeleteDepartment(ctx context.Context, departmentID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Name: MutDeleteDepartment,
		Fn: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Admin().DeleteDepartment(ctx, departmentID)
		},
		Invalidates:    Invalidations[MutDeleteDepartment],
		SuccessMessage: "Department deleted",
		ErrorMessage:   "Failed to delete department",
	})
	return err
}

// Jobs 搜索时部门在返回的这一页上过滤
func (s *Store) Jobs(ctx context.Context, st view.ListState) (domain.Page[domain.Job], error) {
	return query.Fetch(ctx, s.cache, query.Query[domain.Page[domain.Job]]{
		Key: JobsKey(st),
		Fn: func(ctx context.Context) (domain.Page[domain.Job], error) {
			p := pageOf(st.Page, st.PageSize())
			switch {
			case st.Search != "":
				page, err := s.api.Admin().SearchJobs(ctx, st.Search, p)
				if err != nil || st.DepartmentID == 0 {
					return page, err
				}
				return filterPage(page, func(j domain.Job) bool { return j.DepartmentID == st.DepartmentID }), nil
			case st.DepartmentID > 0:
				return s.api.Admin().ListJobsByDepartment(ctx, st.DepartmentID, p)
			default:
				return s.api.Admin().ListJobs(ctx, p)
			}
		},
	})
}

func (s *Store) CreateJob(ctx context.Context, req api.JobRequest) (*domain.Job, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Job]{
		Name:           MutCreateJob,
		Fn:             func(ctx context.Context) (*domain.Job, error) { return s.api.Admin().CreateJob(ctx, req) },
		Invalidates:    Invalidations[MutCreateJob],
		SuccessMessage: fmt.Sprintf("Job %s created", req.Title),
		ErrorMessage:   "Failed to create job",
	})
}

func (s *Store) UpdateJob(ctx context.Context, jobID int64, req api.JobRequest) (*domain.Job, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Job]{
		Name:           MutUpdateJob,
		Fn:             func(ctx context.Context) (*domain.Job, error) { return s.api.Admin().UpdateJob(ctx, jobID, req) },
		Invalidates:    Invalidations[MutUpdateJob],
		SuccessMessage: "Job updated",
		ErrorMessage:   "Failed to update job",
	})
}

func (s *Store) DeleteJob(ctx context.Context, jobID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Name: MutDeleteJob,
		Fn: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Admin().DeleteJob(ctx, jobID)
		},
		Invalidates:    Invalidations[MutDeleteJob],
		SuccessMessage: "Job deleted",
		ErrorMessage:   "Failed to delete job",
	})
	return err
}

func (s *Store) EmployeeJobs(ctx context.Context, employeeID int64) ([]domain.EmployeeJob, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]domain.EmployeeJob]{
		Key: EmployeeJobsKey(employeeID),
		Fn: func(ctx context.Context) ([]domain.EmployeeJob, error) {
			return s.api.Admin().ListEmployeeJobs(ctx, employeeID)
		},
	})
}

func (s *Store) AssignJob(ctx context.Context, req api.AssignJobRequest) (*domain.EmployeeJob, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.EmployeeJob]{
		Name:           MutAssignJob,
		Fn:             func(ctx context.Context) (*domain.EmployeeJob, error) { return s.api.Admin().AssignJob(ctx, req) },
		Invalidates:    Invalidations[MutAssignJob],
		SuccessMessage: "Job assigned",
		ErrorMessage:   "Failed to assign job",
	})
}

func (s *Store) UnassignJob(ctx context.Context, employeeJobID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Name: MutUnassignJob,
		Fn: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Admin().UnassignJob(ctx, employeeJobID)
		},
		Invalidates:    Invalidations[MutUnassignJob],
		SuccessMessage: "Job unassigned",
		ErrorMessage:   "Failed to unassign job",
	})
	return err
}

func (s *Store) UpdateWageOverride(ctx context.Context, employeeJobID int64, req api.WageOverrideRequest) (*domain.EmployeeJob, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.EmployeeJob]{
		Name: MutUpdateWageOverride,
		Fn: func(ctx context.Context) (*domain.EmployeeJob, error) {
			return s.api.Admin().UpdateWageOverride(ctx, employeeJobID, req)
		},
		Invalidates:    Invalidations[MutUpdateWageOverride],
		SuccessMessage: "Hourly wage updated",
		ErrorMessage:   "Failed to update hourly wage",
	})
}

func (s *Store) Company(ctx context.Context) (*domain.Company, error) {
	return query.Fetch(ctx, s.cache, query.Query[*domain.Company]{
		Key: CompanyKey(),
		Fn:  s.api.Company().GetCompany,
	})
}

func (s *Store) UpdateCompany(ctx context.Context, req api.CompanyRequest) (*domain.Company, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Company]{
		Name:           MutUpdateCompany,
		Fn:             func(ctx context.Context) (*domain.Company, error) { return s.api.Company().UpdateCompany(ctx, req) },
		Invalidates:    Invalidations[MutUpdateCompany],
		SuccessMessage: "Company profile updated",
		ErrorMessage:   "Failed to update company profile",
	})
}
