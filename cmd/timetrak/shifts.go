package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/view"
)

func runShifts(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("shifts", flag.ContinueOnError)
	var l listFlags
	l.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := l.state(ctx, c, view.ShiftsPolicy)
	if err != nil {
		return err
	}

	page, err := c.Store.Shifts(ctx, st)
	if err != nil {
		return err
	}
	renderShifts(c.out, page.Content, time.Now())
	pager(c.out, page)
	return nil
}

// assignmentFlags 选择一条岗位分配：直接给出 ID，或者按部门 -> 员工 -> 岗位逐级选择
type assignmentFlags struct {
	id   int64
	dept int64
	emp  int64
	job  int64
}

func (a *assignmentFlags) register(fs *flag.FlagSet) {
	fs.Int64Var(&a.id, "assignment", 0, "employee-job assignment id")
	fs.Int64Var(&a.dept, "dept", 0, "department id")
	fs.Int64Var(&a.emp, "emp", 0, "employee id (requires -dept)")
	fs.Int64Var(&a.job, "job", 0, "job id when the employee has several assignments")
}

// resolve 返回 0 表示没有选择，由表单校验给出提示
func (a *assignmentFlags) resolve(ctx context.Context, c *cli) (int64, error) {
	if a.id > 0 || (a.dept == 0 && a.emp == 0) {
		return a.id, nil
	}

	picker := view.EmployeePicker{}.SelectDepartment(a.dept)
	picker, err := picker.SelectEmployee(a.emp)
	if err != nil {
		return 0, err
	}
	employees, err := c.Store.DepartmentEmployees(ctx, picker)
	if err != nil {
		return 0, err
	}
	if picker.EmployeeID == 0 {
		return 0, nil
	}
	if !slices.ContainsFunc(employees, func(e domain.Employee) bool { return e.ID == picker.EmployeeID }) {
		return 0, fmt.Errorf("employee %d is not in department %d", picker.EmployeeID, picker.DepartmentID)
	}

	assignments, err := c.Store.EmployeeJobs(ctx, picker.EmployeeID)
	if err != nil {
		return 0, err
	}
	var matches []domain.EmployeeJob
	for _, ej := range assignments {
		if a.job == 0 || ej.JobID == a.job {
			matches = append(matches, ej)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("employee %d has no matching job assignment", picker.EmployeeID)
	case 1:
		return matches[0].EmployeeJobID, nil
	default:
		return 0, fmt.Errorf("employee %d has %d assignments, pick one with -job", picker.EmployeeID, len(matches))
	}
}

func runShift(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: shift show|add|update|delete|clock-in|clock-out|bulk-in|bulk-out ...")
	}
	action, args := args[0], args[1:]

	switch action {
	case "add":
		return saveShift(ctx, c, 0, args)
	case "clock-in", "clock-out":
		return clock(ctx, c, action, args)
	case "bulk-in", "bulk-out":
		return bulkClock(ctx, c, action, args)
	}

	if len(args) == 0 {
		return fmt.Errorf("usage: shift %s ID", action)
	}
	id, err := parseID(args[0], "shift")
	if err != nil {
		return err
	}
	switch action {
	case "show":
		s, err := c.Store.Shift(ctx, id)
		if err != nil {
			return err
		}
		renderShifts(c.out, []domain.Shift{*s}, time.Now())
		if s.Notes != "" {
			fmt.Fprintln(c.out, "Notes:", s.Notes)
		}
		return nil
	case "update":
		return saveShift(ctx, c, id, args[1:])
	case "delete":
		return shown(c.Store.DeleteShift(ctx, id))
	default:
		return fmt.Errorf("unknown shift action %q", action)
	}
}

// saveShift 的 id 为 0 时新建，否则以现有班次为初始值编辑
func saveShift(ctx context.Context, c *cli, id int64, args []string) error {
	f := form.ShiftForm{}
	if id > 0 {
		s, err := c.Store.Shift(ctx, id)
		if err != nil {
			return err
		}
		f.EmployeeJobID = s.EmployeeJobID
		f.ClockIn = s.ClockIn.Local().Format(form.DateTimeLocal)
		if s.ClockOut != nil {
			f.ClockOut = s.ClockOut.Local().Format(form.DateTimeLocal)
		}
		f.Notes = s.Notes
	}

	fs := flag.NewFlagSet("shift", flag.ContinueOnError)
	var a assignmentFlags
	a.register(fs)
	fs.StringVar(&f.ClockIn, "in", f.ClockIn, "clock-in time (YYYY-MM-DDTHH:MM)")
	fs.StringVar(&f.ClockOut, "out", f.ClockOut, "clock-out time, empty keeps the shift active")
	fs.StringVar(&f.Notes, "notes", f.Notes, "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.id > 0 || a.dept > 0 || a.emp > 0 {
		ej, err := a.resolve(ctx, c)
		if err != nil {
			return err
		}
		f.EmployeeJobID = ej
	}

	s, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.ShiftForm) (*domain.Shift, error) {
		var (
			s   *domain.Shift
			err error
		)
		if id == 0 {
			s, err = c.Store.CreateShift(ctx, f.Request())
		} else {
			s, err = c.Store.UpdateShift(ctx, id, f.Request())
		}
		return s, shown(err)
	})
	if err != nil {
		return err
	}
	renderShifts(c.out, []domain.Shift{*s}, time.Now())
	return nil
}

func clock(ctx context.Context, c *cli, action string, args []string) error {
	fs := flag.NewFlagSet("shift "+action, flag.ContinueOnError)
	var a assignmentFlags
	a.register(fs)
	f := form.ClockForm{}
	fs.StringVar(&f.Time, "time", nowLocal(), "time (YYYY-MM-DDTHH:MM)")
	fs.StringVar(&f.Notes, "notes", "", "notes")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// 只有显式传入时才带上位置
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "lat":
			f.Latitude = lat
		case "lng":
			f.Longitude = lng
		}
	})

	ej, err := a.resolve(ctx, c)
	if err != nil {
		return err
	}
	f.EmployeeJobID = ej

	s, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.ClockForm) (*domain.Shift, error) {
		var (
			s   *domain.Shift
			err error
		)
		if action == "clock-in" {
			s, err = c.Store.ClockIn(ctx, f.Request())
		} else {
			s, err = c.Store.ClockOut(ctx, f.Request())
		}
		return s, shown(err)
	})
	if err != nil {
		return err
	}
	renderShifts(c.out, []domain.Shift{*s}, time.Now())
	return nil
}

func bulkClock(ctx context.Context, c *cli, action string, args []string) error {
	fs := flag.NewFlagSet("shift "+action, flag.ContinueOnError)
	f := form.BulkClockForm{}
	ids := fs.String("ids", "", "comma separated assignment ids")
	allActive := fs.Bool("all-active", false, "select every active shift (bulk-out)")
	fs.StringVar(&f.Time, "time", nowLocal(), "time (YYYY-MM-DDTHH:MM)")
	fs.StringVar(&f.Notes, "notes", "", "notes")
	fs.StringVar(&f.Reason, "reason", "", "reason")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sel := view.NewSelection()
	if *allActive {
		active, err := c.Store.ActiveShifts(ctx, 1000)
		if err != nil {
			return err
		}
		sel.ToggleAll(active)
	}
	parsed, err := parseIDs(*ids)
	if err != nil {
		return err
	}
	for _, id := range parsed {
		s := domain.Shift{EmployeeJobID: id}
		if !sel.Contains(s) {
			sel.Toggle(s)
		}
	}
	f.IDs = sel.IDs()

	res, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.BulkClockForm) (*api.BulkClockResult, error) {
		var (
			res *api.BulkClockResult
			err error
		)
		if action == "bulk-in" {
			res, err = c.Store.BulkClockIn(ctx, f.Request())
		} else {
			res, err = c.Store.BulkClockOut(ctx, f.Request())
		}
		return res, shown(err)
	})
	if err != nil {
		return err
	}

	done := make([]string, len(res.Succeeded))
	for i, id := range res.Succeeded {
		done[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(c.out, "succeeded: %s\n", strings.Join(done, ", "))
	for id, msg := range res.Failed {
		fmt.Fprintf(c.out, "failed %s: %s\n", id, msg)
	}
	return nil
}
