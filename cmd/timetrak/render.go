package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/utils"
	"github.com/timetrak/client/internal/view"
)

// shownError 表示错误已经通过提示展示给用户
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// shown 包装 store 写操作返回的错误，它们已经被缓存层提示过
func shown(err error) error {
	if err == nil {
		return nil
	}
	return &shownError{err: err}
}

func toasted(err error) bool {
	var se *shownError
	return errors.As(err, &se)
}

func table(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func pager[T any](w io.Writer, p domain.Page[T]) {
	pg := view.PagerOf(p)
	line := pg.Label()
	if pg.TotalPages > 1 {
		from, to := pg.Window(7)
		nums := make([]string, 0, to-from)
		for i := from; i < to; i++ {
			if i == pg.Page {
				nums = append(nums, fmt.Sprintf("[%d]", i+1))
				continue
			}
			nums = append(nums, strconv.Itoa(i+1))
		}
		line += "  " + strings.Join(nums, " ")
	}
	fmt.Fprintln(w, line)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func wage(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return money(*d)
}

func datetime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func renderEmployees(w io.Writer, page domain.Page[domain.Employee]) {
	tw := table(w, "ID", "NAME", "USERNAME", "EMAIL", "DEPARTMENT", "STATUS", "ROLE")
	for _, e := range page.Content {
		row(tw, e.ID, e.Name, e.Username, e.Email, e.DepartmentName, e.Status, e.Role)
	}
	tw.Flush()
	pager(w, page)
}

func renderShifts(w io.Writer, shifts []domain.Shift, now time.Time) {
	tw := table(w, "ID", "ASSIGNMENT", "EMPLOYEE", "JOB", "CLOCK IN", "CLOCK OUT", "DURATION", "STATUS", "EARNINGS")
	for _, s := range shifts {
		out := "-"
		if s.ClockOut != nil {
			out = datetime(*s.ClockOut)
		}
		row(tw, s.ID, s.EmployeeJobID, s.EmployeeName, s.JobTitle, datetime(s.ClockIn), out,
			utils.FormatShiftDuration(s, now), s.Status, money(s.ShiftEarnings))
	}
	tw.Flush()
}

func renderPayments(w io.Writer, payments []domain.Payment) {
	tw := table(w, "ID", "EMPLOYEE", "PERIOD", "RANGE", "HOURS", "EARNINGS", "STATUS")
	for _, p := range payments {
		row(tw, p.ID, p.EmployeeName, p.PeriodNumber, p.PeriodStart+" ~ "+p.PeriodEnd,
			p.TotalHours.StringFixed(2), money(p.TotalEarnings), p.Status)
	}
	tw.Flush()
}

func renderInvites(w io.Writer, invites []domain.Invite, now time.Time) {
	tw := table(w, "CODE", "DEPARTMENT", "USES", "EXPIRES", "ACTIVE")
	for _, inv := range invites {
		expires := inv.ExpiresAt.Local().Format("2006-01-02")
		if days := utils.DaysUntil(inv.ExpiresAt, now); days >= 0 {
			expires += fmt.Sprintf(" (%dd)", days)
		} else {
			expires += " (expired)"
		}
		row(tw, inv.InviteCode, inv.DepartmentName, fmt.Sprintf("%d/%d", inv.CurrentUses, inv.MaxUses), expires, inv.Usable(now))
	}
	tw.Flush()
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// parseIDs 解析以逗号分隔的 ID 列表
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := parseID(part, "assignment")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func nowLocal() string {
	return time.Now().Format(form.DateTimeLocal)
}
