package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/timetrak/client/internal/app"
	"github.com/timetrak/client/internal/config"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/session"
)

type command struct {
	usage string
	run   func(ctx context.Context, c *cli, args []string) error
}

type cli struct {
	*app.App
	out io.Writer
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":       {"login -u USER [-p PASS]", runLogin},
		"logout":      {"logout", runLogout},
		"whoami":      {"whoami", runWhoami},
		"register":    {"register company|invite [flags]", runRegister},
		"dashboard":   {"dashboard", runDashboard},
		"employees":   {"employees [-tab STATUS] [-q TEXT] [-dept ID] [-page N]", runEmployees},
		"employee":    {"employee show|add|approve|reject|activate|deactivate|delete|jobs ...", runEmployee},
		"departments": {"departments [-page N]", runDepartments},
		"department":  {"department show|add|update|delete ...", runDepartment},
		"jobs":        {"jobs [-q TEXT] [-dept ID] [-page N]", runJobs},
		"job":         {"job add|update|delete|assign|unassign|wage ...", runJob},
		"shifts":      {"shifts [-tab TAB] [-q TEXT] [-dept ID] [-emp ID] [-period N] [-page N]", runShifts},
		"shift":       {"shift show|add|update|delete|clock-in|clock-out|bulk-in|bulk-out ...", runShift},
		"payments":    {"payments [-tab STATUS] [-emp ID] [-period N] [-page N]", runPayments},
		"payment":     {"payment calculate|status|export ...", runPayment},
		"periods":     {"periods", runPeriods},
		"invites":     {"invites [-active] [-page N]", runInvites},
		"invite":      {"invite add|deactivate|url|share|validate ...", runInvite},
		"company":     {"company show|update ...", runCompany},
		"focus":       {"focus", runFocus},
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// 日志写到 stderr，stdout 只输出表格
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, notify.NewConsole(os.Stderr))
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	c := &cli{App: a, out: os.Stdout}
	if _, err := a.Session.Bootstrap(ctx); err != nil {
		logger.Debug("session bootstrap failed", "error", err)
	}

	name, args := flag.Arg(0), flag.Args()[1:]
	if name == "shell" {
		err = c.shell(ctx, os.Stdin)
	} else {
		err = c.dispatch(ctx, name, args)
	}
	if err != nil {
		c.report(err)
		a.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: timetrak <command> [flags]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "  shell    read commands from stdin and keep the cache between them")
}

func (c *cli) dispatch(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.run(ctx, c, args)
}

// report 只输出没有以提示形式展示过的错误
func (c *cli) report(err error) {
	var validationErr *form.ValidationError
	switch {
	case errors.As(err, &validationErr):
		// 已经由 form.Submit 提示
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Fprintln(os.Stderr, "not logged in, run `timetrak login` first")
	case errors.Is(err, flag.ErrHelp):
	default:
		c.Logger.Debug("command failed", "error", err)
		if !toasted(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

// shell 在同一个进程里执行多条命令，查询缓存在命令之间保留
func (c *cli) shell(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(c.out, "timetrak> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
		case fields[0] == "exit" || fields[0] == "quit":
			return nil
		default:
			if err := c.dispatch(ctx, fields[0], fields[1:]); err != nil {
				c.report(err)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(c.out, "timetrak> ")
	}
	return scanner.Err()
}
