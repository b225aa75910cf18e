package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/app"
	"github.com/timetrak/client/internal/config"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/seed"
)

func main() {
	var op int
	var n int
	var jobs int
	var days int
	var file string
	var username string
	var password string
	var emailDomain string

	flag.IntVar(&op, "op", 0, "operation (1: random departments, 2: random employees, 3: random shifts, 4: import employees from csv)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.IntVar(&jobs, "jobs", 2, "jobs per department for op 1")
	flag.IntVar(&days, "days", 14, "days of shift history for op 3")
	flag.StringVar(&file, "file", "", "csv file for op 4")
	flag.StringVar(&username, "username", "admin", "admin username")
	flag.StringVar(&password, "password", "", "admin password")
	flag.StringVar(&emailDomain, "email-domain", "timetrak.local", "email domain for random employees")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, notify.NewLogger(logger))
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if _, err := a.Session.Login(ctx, api.LoginRequest{Username: username, Password: password}); err != nil {
		logger.Error("failed to log in", "error", err)
		os.Exit(1)
	}

	s := seed.New(a.Client, a.Validator, logger)

	// 执行操作
	switch op {
	case 0:
		logger.Error("no operation specified")
	case 1:
		if _, err := s.Departments(ctx, n, jobs); err != nil {
			logger.Error("failed to seed departments", "error", err)
		}
	case 2:
		if _, err := s.Employees(ctx, n, emailDomain); err != nil {
			logger.Error("failed to seed employees", "error", err)
		}
	case 3:
		if _, err := s.Shifts(ctx, days); err != nil {
			logger.Error("failed to seed shifts", "error", err)
		}
	case 4:
		f, err := os.Open(file)
		if err != nil {
			logger.Error("failed to open file", "file", file, "error", err)
			return
		}
		defer f.Close()

		if _, err := s.ImportEmployees(ctx, f); err != nil {
			logger.Error("failed to import employees", "error", err)
		}
	default:
		logger.Error("invalid operation", "op", op)
	}
}
