package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/view"
)

func runDepartments(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("departments", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number, starting at 1")
	size := fs.Int("size", view.DefaultPageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := c.Store.Departments(ctx, max(*page-1, 0), *size)
	if err != nil {
		return err
	}
	tw := table(c.out, "ID", "NAME", "EMPLOYEES", "JOBS", "DESCRIPTION")
	for _, d := range p.Content {
		row(tw, d.ID, d.Name, d.EmployeeCount, d.JobCount, d.Description)
	}
	tw.Flush()
	pager(c.out, p)
	return nil
}

func runDepartment(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: department show|add|update|delete ...")
	}
	action, args := args[0], args[1:]

	var id int64
	if action != "add" {
		if len(args) == 0 {
			return fmt.Errorf("usage: department %s ID", action)
		}
		var err error
		if id, err = parseID(args[0], "department"); err != nil {
			return err
		}
		args = args[1:]
	}

	switch action {
	case "show":
		d, err := c.Store.Department(ctx, id)
		if err != nil {
			return err
		}
		employees, err := c.Store.DepartmentEmployees(ctx, view.EmployeePicker{}.SelectDepartment(id))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s (%d employees, %d jobs)\n%s\n\n", d.Name, d.EmployeeCount, d.JobCount, d.Description)
		renderEmployees(c.out, domain.SinglePage(employees))
		return nil
	case "delete":
		return shown(c.Store.DeleteDepartment(ctx, id))
	case "add", "update":
		fs := flag.NewFlagSet("department "+action, flag.ContinueOnError)
		f := form.DepartmentForm{}
		if action == "update" {
			d, err := c.Store.Department(ctx, id)
			if err != nil {
				return err
			}
			f = form.DepartmentForm{Name: d.Name, Description: d.Description}
		}
		fs.StringVar(&f.Name, "name", f.Name, "name")
		fs.StringVar(&f.Description, "desc", f.Description, "description")
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.DepartmentForm) (*domain.Department, error) {
			var (
				d   *domain.Department
				err error
			)
			if action == "add" {
				d, err = c.Store.CreateDepartment(ctx, f.Request())
			} else {
				d, err = c.Store.UpdateDepartment(ctx, id, f.Request())
			}
			return d, shown(err)
		})
		return err
	default:
		return fmt.Errorf("unknown department action %q", action)
	}
}

func runJobs(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	var l listFlags
	l.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := l.state(ctx, c, view.JobsPolicy)
	if err != nil {
		return err
	}

	p, err := c.Store.Jobs(ctx, st)
	if err != nil {
		return err
	}
	tw := table(c.out, "ID", "TITLE", "DEPARTMENT", "HOURLY WAGE", "DESCRIPTION")
	for _, j := range p.Content {
		row(tw, j.ID, j.Title, j.DepartmentID, money(j.HourlyWage), j.Description)
	}
	tw.Flush()
	pager(c.out, p)
	return nil
}

func runJob(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: job add|update|delete|assign|unassign|wage ...")
	}
	action, args := args[0], args[1:]

	switch action {
	case "add", "update":
		return saveJob(ctx, c, action, args)
	case "assign":
		fs := flag.NewFlagSet("job assign", flag.ContinueOnError)
		employeeID := fs.Int64("emp", 0, "employee id")
		jobID := fs.Int64("job", 0, "job id")
		override := fs.String("wage", "", "hourly wage override")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *employeeID <= 0 || *jobID <= 0 {
			return errors.New("both -emp and -job are required")
		}
		f, err := wageForm(*override)
		if err != nil {
			return err
		}
		_, err = form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.WageOverrideForm) (*domain.EmployeeJob, error) {
			ej, err := c.Store.AssignJob(ctx, api.AssignJobRequest{
				EmployeeID: *employeeID,
				JobID:      *jobID,
				HourlyWage: f.Request().HourlyWage,
			})
			return ej, shown(err)
		})
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("usage: job %s ID", action)
	}
	switch action {
	case "delete":
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}
		return shown(c.Store.DeleteJob(ctx, id))
	case "unassign":
		id, err := parseID(args[0], "assignment")
		if err != nil {
			return err
		}
		return shown(c.Store.UnassignJob(ctx, id))
	case "wage":
		// job wage ASSIGNMENT [AMOUNT]，不带金额时恢复岗位时薪
		id, err := parseID(args[0], "assignment")
		if err != nil {
			return err
		}
		amount := ""
		if len(args) > 1 {
			amount = args[1]
		}
		f, err := wageForm(amount)
		if err != nil {
			return err
		}
		_, err = form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.WageOverrideForm) (*domain.EmployeeJob, error) {
			ej, err := c.Store.UpdateWageOverride(ctx, id, f.Request())
			return ej, shown(err)
		})
		return err
	default:
		return fmt.Errorf("unknown job action %q", action)
	}
}

func wageForm(amount string) (form.WageOverrideForm, error) {
	if amount == "" {
		return form.WageOverrideForm{}, nil
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return form.WageOverrideForm{}, fmt.Errorf("invalid wage %q", amount)
	}
	return form.WageOverrideForm{HourlyWage: &d}, nil
}

func saveJob(ctx context.Context, c *cli, action string, args []string) error {
	var id int64
	if action == "update" {
		if len(args) == 0 {
			return errors.New("usage: job update ID [flags]")
		}
		var err error
		if id, err = parseID(args[0], "job"); err != nil {
			return err
		}
		args = args[1:]
	}

	fs := flag.NewFlagSet("job "+action, flag.ContinueOnError)
	f := form.JobForm{}
	wageText := fs.String("wage", "", "hourly wage")
	fs.StringVar(&f.Title, "title", "", "title")
	fs.StringVar(&f.Description, "desc", "", "description")
	fs.Int64Var(&f.DepartmentID, "dept", 0, "department id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *wageText != "" {
		d, err := decimal.NewFromString(*wageText)
		if err != nil {
			return fmt.Errorf("invalid wage %q", *wageText)
		}
		f.HourlyWage = d
	}

	_, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.JobForm) (*domain.Job, error) {
		var (
			j   *domain.Job
			err error
		)
		if action == "add" {
			j, err = c.Store.CreateJob(ctx, f.Request())
		} else {
			j, err = c.Store.UpdateJob(ctx, id, f.Request())
		}
		return j, shown(err)
	})
	return err
}

func runCompany(ctx context.Context, c *cli, args []string) error {
	action := "show"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	co, err := c.Store.Company(ctx)
	if err != nil {
		return err
	}

	switch action {
	case "show":
		tw := table(c.out, "NAME", "EMAIL", "PHONE", "ADDRESS")
		row(tw, co.Name, co.Email, co.Phone, co.Address)
		tw.Flush()
		return nil
	case "update":
		fs := flag.NewFlagSet("company update", flag.ContinueOnError)
		f := form.CompanyForm{Name: co.Name, Email: co.Email, Phone: co.Phone, Address: co.Address}
		fs.StringVar(&f.Name, "name", f.Name, "company name")
		fs.StringVar(&f.Email, "email", f.Email, "email")
		fs.StringVar(&f.Phone, "phone", f.Phone, "phone")
		fs.StringVar(&f.Address, "address", f.Address, "address")
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.CompanyForm) (*domain.Company, error) {
			co, err := c.Store.UpdateCompany(ctx, f.Request())
			return co, shown(err)
		})
		return err
	default:
		return fmt.Errorf("unknown company action %q", action)
	}
}

func runFocus(ctx context.Context, c *cli, _ []string) error {
	if err := c.Cache.Focus(ctx); err != nil {
		return err
	}
	c.Notifier.Success("Refreshed stale data")
	return nil
}
