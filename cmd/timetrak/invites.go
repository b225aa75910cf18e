package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
)

func runInvites(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("invites", flag.ContinueOnError)
	active := fs.Bool("active", false, "only invites that can still be used")
	page := fs.Int("page", 1, "page number, starting at 1")
	size := fs.Int("size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *active {
		invites, err := c.Store.ActiveInvites(ctx)
		if err != nil {
			return err
		}
		renderInvites(c.out, invites, time.Now())
		return nil
	}

	p, err := c.Store.Invites(ctx, max(*page-1, 0), *size)
	if err != nil {
		return err
	}
	renderInvites(c.out, p.Content, time.Now())
	pager(c.out, p)
	return nil
}

func runInvite(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: invite add|deactivate|url|share|validate ...")
	}
	action, args := args[0], args[1:]

	if action == "add" {
		return addInvite(ctx, c, args)
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: invite %s CODE", action)
	}
	code, args := args[0], args[1:]

	switch action {
	case "deactivate":
		_, err := c.Store.DeactivateInvite(ctx, code)
		return shown(err)
	case "url":
		u, err := c.Store.InviteURL(ctx, code)
		if err != nil {
			return shown(err)
		}
		fmt.Fprintln(c.out, u)
		return nil
	case "validate":
		v, err := c.Store.ValidateInvite(ctx, code)
		if err != nil {
			return err
		}
		if !v.Valid {
			fmt.Fprintln(c.out, "invalid:", v.Message)
			return nil
		}
		fmt.Fprintf(c.out, "valid: %s, %s\n", v.CompanyName, v.DepartmentName)
		return nil
	case "share":
		return shareInvite(ctx, c, code, args)
	default:
		return fmt.Errorf("unknown invite action %q", action)
	}
}

func addInvite(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("invite add", flag.ContinueOnError)
	f := form.InviteForm{ExpiresInDays: 7}
	var dept int64
	fs.Int64Var(&dept, "dept", 0, "department id")
	fs.BoolVar(&f.SingleUse, "single", false, "single use")
	fs.IntVar(&f.MaxUses, "max-uses", 0, "maximum number of registrations")
	fs.IntVar(&f.ExpiresInDays, "days", f.ExpiresInDays, "days until the invite expires")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if dept > 0 {
		f.DepartmentID = strconv.FormatInt(dept, 10)
	}

	inv, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.InviteForm) (*domain.Invite, error) {
		req, err := f.Request()
		if err != nil {
			return nil, err
		}
		inv, err := c.Store.CreateInvite(ctx, req)
		return inv, shown(err)
	})
	if err != nil {
		return err
	}
	renderInvites(c.out, []domain.Invite{*inv}, time.Now())
	return nil
}

// shareInvite 是分享面板的终端版本：把邀请链接通过邮件 worker 发出去
func shareInvite(ctx context.Context, c *cli, code string, args []string) error {
	fs := flag.NewFlagSet("invite share", flag.ContinueOnError)
	to := fs.String("to", "", "recipient email")
	message := fs.String("message", "", "personal message")
	if err := fs.Parse(args); err != nil {
		return err
	}

	invites, err := c.Store.ActiveInvites(ctx)
	if err != nil {
		return err
	}
	var invite *domain.Invite
	for _, inv := range invites {
		if inv.InviteCode == code {
			invite = &inv
			break
		}
	}
	if invite == nil {
		return fmt.Errorf("invite %s is not active", code)
	}

	sharer, err := c.Sharer()
	if err != nil {
		return err
	}
	return shown(sharer.ShareInvite(ctx, *invite, form.ShareInviteForm{To: *to, Message: *message}))
}
