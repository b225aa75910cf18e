// Package seed 通过管理端接口批量写入演示数据，真实服务端和 fakeapi 都可以使用
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/utils"
	"golang.org/x/sync/errgroup"
)

// 同时进行的写请求上限
const concurrency = 4

type Seeder struct {
	admin     *api.AdminService
	validator *form.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func New(client *api.Client, v *form.Validator, logger *slog.Logger) *Seeder {
	return &Seeder{
		admin:     client.Admin(),
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Departments 插入 n 个随机部门，并为每个部门创建 jobsPerDepartment 个岗位
func (s *Seeder) Departments(ctx context.Context, n, jobsPerDepartment int) ([]domain.Department, error) {
	if n <= 0 {
		return nil, errors.New("department count must be positive")
	}

	var depts []domain.Department
	for _, f := range utils.GenerateRandomDepartments(n) {
		if err := s.validator.Validate(f); err != nil {
			s.logger.Error("invalid generated department", "name", f.Name, "error", err)
			continue
		}
		d, err := s.admin.CreateDepartment(ctx, f.Request())
		if err != nil {
			switch {
			case api.StatusOf(err) == 409:
				s.logger.Warn("department already exists", "name", f.Name)
			default:
				s.logger.Error("failed to create department", "name", f.Name, "error", err)
			}
			continue
		}
		depts = append(depts, *d)

		for range jobsPerDepartment {
			jf := utils.GenerateRandomJob(d.ID, d.Name)
			if err := s.validator.Validate(jf); err != nil {
				s.logger.Error("invalid generated job", "title", jf.Title, "error", err)
				continue
			}
			if _, err := s.admin.CreateJob(ctx, jf.Request()); err != nil {
				s.logger.Error("failed to create job", "title", jf.Title, "error", err)
			}
		}
	}

	s.logger.Info("departments seeded", "count", len(depts))
	return depts, nil
}

// Employees 在给定部门中随机插入 n 个员工，并给每个员工分配一个本部门的岗位
func (s *Seeder) Employees(ctx context.Context, n int, emailDomain string) (int, error) {
	if n <= 0 {
		return 0, errors.New("employee count must be positive")
	}

	depts, err := s.admin.ListDepartments(ctx, api.PageRequest{Size: 100})
	if err != nil {
		return 0, fmt.Errorf("list departments: %w", err)
	}
	if len(depts.Content) == 0 {
		return 0, errors.New("no departments to place employees in")
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for range n {
		dept := depts.Content[rand.Intn(len(depts.Content))]
		g.Go(func() error {
			// 单个员工失败只记录日志，不中断其他员工
			if err := s.employee(gctx, dept, emailDomain); err != nil {
				s.logger.Error("failed to seed employee", "department", dept.Name, "error", err)
				return nil
			}
			created.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(created.Load()), err
	}

	s.logger.Info("employees seeded", "count", created.Load())
	return int(created.Load()), nil
}

func (s *Seeder) employee(ctx context.Context, dept domain.Department, emailDomain string) error {
	f := utils.GenerateRandomEmployee(dept.ID, emailDomain)
	if err := s.validator.Validate(f); err != nil {
		return err
	}
	e, err := s.admin.RegisterEmployee(ctx, f.Request())
	if err != nil {
		return err
	}

	jobs, err := s.admin.ListJobsByDepartment(ctx, dept.ID, api.PageRequest{Size: 50})
	if err != nil {
		return err
	}
	if len(jobs.Content) == 0 {
		return nil
	}
	job := jobs.Content[rand.Intn(len(jobs.Content))]
	_, err = s.admin.AssignJob(ctx, api.AssignJobRequest{EmployeeID: e.ID, JobID: job.ID})
	return err
}

// Shifts 为每个岗位分配生成过去 days 天内的已完成班次
func (s *Seeder) Shifts(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, errors.New("days must be positive")
	}

	employees, err := s.admin.ListActiveEmployees(ctx, api.PageRequest{Size: 1000})
	if err != nil {
		return 0, fmt.Errorf("list active employees: %w", err)
	}

	today := s.now().Truncate(24 * time.Hour)
	cnt := 0
	for _, e := range employees.Content {
		assignments, err := s.admin.ListEmployeeJobs(ctx, e.ID)
		if err != nil {
			s.logger.Error("failed to list assignments", "employee_id", e.ID, "error", err)
			continue
		}
		for _, ej := range assignments {
			for d := days; d >= 1; d-- {
				// 大约一半的日子有班
				if rand.Intn(2) == 0 {
					continue
				}
				in := today.AddDate(0, 0, -d).Add(time.Duration(8+rand.Intn(4)) * time.Hour)
				out := in.Add(time.Duration(4+rand.Intn(5))*time.Hour + time.Duration(rand.Intn(4)*15)*time.Minute)
				f := form.ShiftForm{
					EmployeeJobID: ej.EmployeeJobID,
					ClockIn:       in.Format(form.DateTimeLocal),
					ClockOut:      out.Format(form.DateTimeLocal),
				}
				if err := s.validator.Validate(f); err != nil {
					s.logger.Error("invalid generated shift", "error", err)
					continue
				}
				if _, err := s.admin.CreateShift(ctx, f.Request()); err != nil {
					s.logger.Error("failed to create shift", "employee_job_id", ej.EmployeeJobID, "error", err)
					continue
				}
				cnt++
			}
		}
	}

	s.logger.Info("shifts seeded", "count", cnt)
	return cnt, nil
}

// 导入文件必须包含的列
var importHeaders = []string{"name", "username", "email", "department"}

// ImportEmployees 从 csv 导入员工，部门按名称匹配，不存在时自动创建。
// 表头不区分大小写，可选列为 phone
func (s *Seeder) ImportEmployees(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range importHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing column %q", h)
		}
	}

	depts, err := s.admin.ListDepartments(ctx, api.PageRequest{Size: 100})
	if err != nil {
		return 0, fmt.Errorf("list departments: %w", err)
	}
	byName := make(map[string]int64, len(depts.Content))
	for _, d := range depts.Content {
		byName[strings.ToLower(d.Name)] = d.ID
	}

	cnt := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return cnt, fmt.Errorf("read line %d: %w", line, err)
		}
		col := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		deptName := col("department")
		deptID, ok := byName[strings.ToLower(deptName)]
		if !ok {
			f := form.DepartmentForm{Name: deptName}
			if err := s.validator.Validate(f); err != nil {
				s.logger.Error("invalid department", "line", line, "error", err)
				continue
			}
			d, err := s.admin.CreateDepartment(ctx, f.Request())
			if err != nil {
				s.logger.Error("failed to create department", "line", line, "name", deptName, "error", err)
				continue
			}
			deptID = d.ID
			byName[strings.ToLower(deptName)] = deptID
		}

		username := col("username")
		if username == "" {
			username = utils.SuggestUsername(col("name"))
		}
		f := form.EmployeeRegistrationForm{
			Name:         col("name"),
			Username:     username,
			Email:        col("email"),
			Phone:        col("phone"),
			DepartmentID: deptID,
			Role:         string(domain.RoleEmployee),
		}
		if err := s.validator.Validate(f); err != nil {
			s.logger.Error("invalid employee", "line", line, "error", err)
			continue
		}
		if _, err := s.admin.RegisterEmployee(ctx, f.Request()); err != nil {
			s.logger.Error("failed to import employee", "line", line, "username", username, "error", err)
			continue
		}
		cnt++
	}

	s.logger.Info("employees imported", "count", cnt)
	return cnt, nil
}
