package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/utils"
	"github.com/timetrak/client/internal/view"
)

func runDashboard(ctx context.Context, c *cli, _ []string) error {
	d := c.Store.Dashboard(ctx)
	now := time.Now()

	fmt.Fprintln(c.out, "Employees")
	if d.CountsErr != nil {
		fmt.Fprintln(c.out, "  unavailable:", d.CountsErr)
	} else {
		tw := table(c.out, "  ALL", "PENDING", "ACTIVE", "DEACTIVATED", "REJECTED")
		row(tw, "  "+fmt.Sprint(d.Counts.All), d.Counts.Pending, d.Counts.Active, d.Counts.Deactivated, d.Counts.Rejected)
		tw.Flush()
	}

	fmt.Fprintln(c.out, "\nCurrent period")
	switch {
	case d.PeriodErr != nil:
		fmt.Fprintln(c.out, "  unavailable:", d.PeriodErr)
	case d.CurrentPeriod != nil:
		fmt.Fprintln(c.out, "  "+d.CurrentPeriod.DisplayLabel)
	}

	fmt.Fprintln(c.out, "\nActive shifts")
	if d.ShiftsErr != nil {
		fmt.Fprintln(c.out, "  unavailable:", d.ShiftsErr)
	} else {
		renderShifts(c.out, d.ActiveShifts, now)
	}

	fmt.Fprintln(c.out, "\nRecent payments")
	if d.PaymentsErr != nil {
		fmt.Fprintln(c.out, "  unavailable:", d.PaymentsErr)
	} else {
		renderPayments(c.out, d.RecentPayments)
	}

	// 所有区块都失败时按失败退出
	if errs := d.Errs(); len(errs) == 4 {
		return errors.Join(errs...)
	}
	return nil
}

// listFlags 是列表命令共用的筛选参数
type listFlags struct {
	tab    string
	search string
	dept   int64
	emp    int64
	period int
	page   int
	size   int
}

func (l *listFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.tab, "tab", view.TabAll, "tab")
	fs.StringVar(&l.search, "q", "", "search text")
	fs.Int64Var(&l.dept, "dept", 0, "department id")
	fs.Int64Var(&l.emp, "emp", 0, "employee id")
	fs.IntVar(&l.period, "period", 0, "payment period number")
	fs.IntVar(&l.page, "page", 1, "page number, starting at 1")
	fs.IntVar(&l.size, "size", view.DefaultPageSize, "page size")
}

// state 按界面上的操作顺序应用各个转换，页码最后设置
func (l *listFlags) state(ctx context.Context, c *cli, policy view.Policy) (view.ListState, error) {
	st := view.NewListState(policy)
	st.Size = l.size
	st = st.WithTab(l.tab)
	if l.search != "" {
		st = st.WithSearch(l.search)
	}
	if l.dept > 0 {
		st = st.WithDepartment(l.dept)
	}
	if l.emp > 0 {
		st = st.WithEmployee(l.emp)
	}
	if l.period > 0 {
		periods, err := c.Store.AvailablePeriods(ctx)
		if err != nil {
			return st, err
		}
		found := false
		for _, p := range periods {
			if p.PeriodNumber == l.period {
				st, found = st.WithPeriod(periods, p.PeriodStart, p.PeriodEnd)
				break
			}
		}
		if !found {
			return st, fmt.Errorf("period %d is not available", l.period)
		}
	}
	return st.WithPage(l.page - 1), nil
}

func runEmployees(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("employees", flag.ContinueOnError)
	var l listFlags
	l.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := l.state(ctx, c, view.EmployeesPolicy)
	if err != nil {
		return err
	}

	page, err := c.Store.Employees(ctx, st)
	if err != nil {
		return err
	}
	// 请求的页码超出范围时回到最后一页
	if clamped := st.ClampPage(page.TotalPages); !clamped.Equal(st) {
		if page, err = c.Store.Employees(ctx, clamped); err != nil {
			return err
		}
	}

	if counts, err := c.Store.EmployeeCounts(ctx); err == nil {
		fmt.Fprintf(c.out, "ALL %d | PENDING %d | ACTIVE %d | DEACTIVATED %d | REJECTED %d\n",
			counts.All, counts.Pending, counts.Active, counts.Deactivated, counts.Rejected)
	}
	renderEmployees(c.out, page)
	return nil
}

func runEmployee(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: employee show|add|approve|reject|activate|deactivate|delete|jobs ...")
	}
	action, args := args[0], args[1:]

	if action == "add" {
		return addEmployee(ctx, c, args)
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: employee %s ID", action)
	}
	id, err := parseID(args[0], "employee")
	if err != nil {
		return err
	}

	switch action {
	case "show":
		e, err := c.Store.Employee(ctx, id)
		if err != nil {
			return err
		}
		renderEmployees(c.out, domain.SinglePage([]domain.Employee{*e}))
		return nil
	case "jobs":
		assignments, err := c.Store.EmployeeJobs(ctx, id)
		if err != nil {
			return err
		}
		tw := table(c.out, "ASSIGNMENT", "JOB", "TITLE", "WAGE OVERRIDE")
		for _, ej := range assignments {
			row(tw, ej.EmployeeJobID, ej.JobID, ej.JobTitle, wage(ej.HourlyWage))
		}
		tw.Flush()
		return nil
	case "approve":
		_, err = c.Store.ApproveEmployee(ctx, id)
	case "reject":
		_, err = c.Store.RejectEmployee(ctx, id)
	case "activate":
		_, err = c.Store.ActivateEmployee(ctx, id)
	case "deactivate":
		_, err = c.Store.DeactivateEmployee(ctx, id)
	case "delete":
		err = c.Store.DeleteEmployee(ctx, id)
	default:
		return fmt.Errorf("unknown employee action %q", action)
	}
	return shown(err)
}

func addEmployee(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("employee add", flag.ContinueOnError)
	f := form.EmployeeRegistrationForm{Role: string(domain.RoleEmployee)}
	fs.StringVar(&f.Name, "name", "", "full name")
	fs.StringVar(&f.Username, "u", "", "username (suggested from the name when empty)")
	fs.StringVar(&f.Email, "email", "", "email")
	fs.StringVar(&f.Phone, "phone", "", "phone")
	fs.Int64Var(&f.DepartmentID, "dept", 0, "department id")
	fs.StringVar(&f.Role, "role", f.Role, "ADMIN or EMPLOYEE")
	fs.StringVar(&f.Password, "p", "", "initial password")
	random := fs.Bool("random", false, "fill the form with random data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *random {
		f = utils.GenerateRandomEmployee(f.DepartmentID, "timetrak.local")
	}
	if f.Username == "" && f.Name != "" {
		f.Username = utils.SuggestUsername(f.Name)
	}

	e, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.EmployeeRegistrationForm) (*domain.Employee, error) {
		e, err := c.Store.RegisterEmployee(ctx, f.Request())
		return e, shown(err)
	})
	if err != nil {
		return err
	}
	renderEmployees(c.out, domain.SinglePage([]domain.Employee{*e}))
	return nil
}
