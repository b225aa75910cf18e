package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/view"
)

func runPayments(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("payments", flag.ContinueOnError)
	var l listFlags
	l.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := l.state(ctx, c, view.PaymentsPolicy)
	if err != nil {
		return err
	}

	page, err := c.Store.Payments(ctx, st)
	if err != nil {
		return err
	}
	renderPayments(c.out, page.Content)
	pager(c.out, page)
	return nil
}

func runPeriods(ctx context.Context, c *cli, _ []string) error {
	periods, err := c.Store.AvailablePeriods(ctx)
	if err != nil {
		return err
	}
	current, _ := c.Store.CurrentPeriod(ctx)
	completed, _ := c.Store.MostRecentCompletedPeriod(ctx)

	tw := table(c.out, "NUMBER", "START", "END", "LABEL", "")
	for _, p := range periods {
		mark := ""
		switch {
		case current != nil && p.SameRange(current.PeriodStart, current.PeriodEnd):
			mark = "current"
		case completed != nil && p.SameRange(completed.PeriodStart, completed.PeriodEnd):
			mark = "last completed"
		}
		row(tw, p.PeriodNumber, p.PeriodStart, p.PeriodEnd, p.DisplayLabel, mark)
	}
	tw.Flush()
	return nil
}

func runPayment(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: payment calculate|status|export ...")
	}
	action, args := args[0], args[1:]

	switch action {
	case "calculate":
		return calculate(ctx, c, args)
	case "status":
		// payment status ID STATUS
		if len(args) < 2 {
			return errors.New("usage: payment status ID CALCULATED|ISSUED|COMPLETED|VOIDED")
		}
		id, err := parseID(args[0], "payment")
		if err != nil {
			return err
		}
		f := form.PaymentStatusForm{Status: strings.ToUpper(args[1])}
		_, err = form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.PaymentStatusForm) (*domain.Payment, error) {
			p, err := c.Store.UpdatePaymentStatus(ctx, id, f.Request().Status)
			return p, shown(err)
		})
		return err
	case "export":
		return export(ctx, c, args)
	default:
		return fmt.Errorf("unknown payment action %q", action)
	}
}

// calculate 默认计算最近一个已结束的周期
func calculate(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("payment calculate", flag.ContinueOnError)
	number := fs.Int("period", 0, "period number, defaults to the most recent completed period")
	if err := fs.Parse(args); err != nil {
		return err
	}

	period, err := resolvePeriod(ctx, c.Store, *number)
	if err != nil {
		return err
	}

	res, err := c.Store.CalculatePayments(ctx, *period)
	if err != nil {
		return shown(err)
	}
	fmt.Fprintf(c.out, "period %d: %d payments, total %s\n", res.PeriodNumber, res.PaymentsCreated, money(res.TotalEarnings))
	return nil
}

type periodSource interface {
	MostRecentCompletedPeriod(ctx context.Context) (*domain.PaymentPeriod, error)
	AvailablePeriods(ctx context.Context) ([]domain.PaymentPeriod, error)
}

// resolvePeriod 为 0 时取最近一个已结束的周期
func resolvePeriod(ctx context.Context, src periodSource, number int) (*domain.PaymentPeriod, error) {
	if number == 0 {
		p, err := src.MostRecentCompletedPeriod(ctx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, errors.New("no completed period yet, pass -period")
		}
		return p, nil
	}

	periods, err := src.AvailablePeriods(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range periods {
		if p.PeriodNumber == number {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("period %d is not available", number)
}

func export(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("payment export", flag.ContinueOnError)
	f := form.ExportForm{}
	fs.StringVar(&f.Format, "format", "csv", "csv or pdf")
	fs.IntVar(&f.PeriodNumber, "period", 0, "period number")
	fs.StringVar(&f.Status, "status", "", "payment status")
	dir := fs.String("dir", ".", "directory to save the file in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.Format = strings.ToLower(f.Format)
	f.Status = strings.ToUpper(f.Status)

	dl, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.ExportForm) (*api.Download, error) {
		dl, err := c.Store.ExportPayments(ctx, f.Request())
		return dl, shown(err)
	})
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	// 服务端给出的文件名只取最后一段
	path := filepath.Join(*dir, filepath.Base(dl.Filename))
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, dl.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.Notifier.Success(fmt.Sprintf("Saved %s (%d bytes)", path, n))
	return nil
}
