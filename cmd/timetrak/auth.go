package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/utils"
)

func readLine(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func runLogin(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	f := form.LoginForm{}
	fs.StringVar(&f.Username, "u", "", "username")
	fs.StringVar(&f.Password, "p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.Password == "" && f.Username != "" {
		f.Password = readLine("Password: ")
	}

	tokens, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.LoginForm) (*domain.AuthTokens, error) {
		return c.Session.Login(ctx, f.Request())
	})
	if err != nil {
		return err
	}

	// 换了身份，之前缓存的数据不再可信
	c.Cache.Clear()
	name := f.Username
	if tokens.User != nil && tokens.User.Name != "" {
		name = tokens.User.Name
	}
	c.Notifier.Success("Welcome, " + name)
	return nil
}

func runLogout(ctx context.Context, c *cli, _ []string) error {
	c.Cache.Clear()
	if err := c.Session.Logout(ctx); err != nil {
		return err
	}
	c.Notifier.Success("Logged out")
	return nil
}

func runWhoami(ctx context.Context, c *cli, _ []string) error {
	tokens, claims, err := c.Session.Current(ctx)
	if err != nil {
		return err
	}
	tw := table(c.out, "USER", "ROLE", "EXPIRES")
	user := claims.Subject
	if tokens.User != nil {
		user = tokens.User.Username
	}
	expires := "-"
	if claims.ExpiresAt != nil {
		expires = datetime(claims.ExpiresAt.Time)
	}
	row(tw, user, claims.Role, expires)
	tw.Flush()
	if !claims.IsAdmin() {
		fmt.Fprintln(c.out, "warning: admin commands require the ADMIN role")
	}
	return nil
}

func runRegister(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: register company|invite [flags]")
	}
	switch args[0] {
	case "company":
		return registerCompany(ctx, c, args[1:])
	case "invite":
		return registerByInvite(ctx, c, args[1:])
	default:
		return fmt.Errorf("unknown register target %q", args[0])
	}
}

func registerCompany(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("register company", flag.ContinueOnError)
	f := form.CompanyRegistrationForm{}
	fs.StringVar(&f.CompanyName, "company", "", "company name")
	fs.StringVar(&f.CompanyEmail, "company-email", "", "company email")
	fs.StringVar(&f.AdminName, "name", "", "administrator full name")
	fs.StringVar(&f.Username, "u", "", "administrator username")
	fs.StringVar(&f.Email, "email", "", "administrator email")
	fs.StringVar(&f.Password, "p", "", "password")
	fs.StringVar(&f.ConfirmPassword, "confirm", "", "password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.Username == "" && f.AdminName != "" {
		f.Username = utils.SuggestUsername(f.AdminName)
	}

	tokens, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.CompanyRegistrationForm) (*domain.AuthTokens, error) {
		tokens, err := c.Client.Company().RegisterCompany(ctx, f.Request())
		if err != nil {
			return nil, shown(toast(c, err, "Registration failed"))
		}
		return tokens, nil
	})
	if err != nil {
		return err
	}
	if err := c.Session.Adopt(ctx, tokens); err != nil {
		return err
	}
	c.Notifier.Success("Company registered, logged in as " + f.Username)
	return nil
}

func registerByInvite(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("register invite", flag.ContinueOnError)
	f := form.InviteRegistrationForm{}
	fs.StringVar(&f.InviteCode, "code", "", "invite code")
	fs.StringVar(&f.Name, "name", "", "full name")
	fs.StringVar(&f.Username, "u", "", "username (suggested from the name when empty)")
	fs.StringVar(&f.Email, "email", "", "email")
	fs.StringVar(&f.Phone, "phone", "", "phone")
	fs.StringVar(&f.Password, "p", "", "password")
	fs.StringVar(&f.ConfirmPassword, "confirm", "", "password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.Username == "" && f.Name != "" {
		f.Username = utils.SuggestUsername(f.Name)
	}

	// 先确认邀请码可用，再提交注册
	if f.InviteCode != "" {
		v, err := c.Store.ValidateInvite(ctx, f.InviteCode)
		if err != nil {
			return err
		}
		if !v.Valid {
			msg := v.Message
			if msg == "" {
				msg = "Invite code is not valid"
			}
			c.Notifier.Error(msg)
			return shown(errors.New(msg))
		}
		fmt.Fprintf(c.out, "Joining %s (%s)\n", v.CompanyName, v.DepartmentName)
	}

	_, err := form.Submit(ctx, c.Validator, c.Notifier, f, func(ctx context.Context, f form.InviteRegistrationForm) (*domain.Employee, error) {
		e, err := c.Store.RegisterByInvite(ctx, f.Request())
		return e, shown(err)
	})
	return err
}

// toast 对不经过缓存层的请求显示错误提示
func toast(c *cli, err error, fallback string) error {
	c.Notifier.Error(notify.Message(err, fallback))
	return err
}
