package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/config"
	"github.com/timetrak/client/internal/fakeapi"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/seed"
	"github.com/timetrak/client/internal/session"
)

func main() {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	/**********************************************
	 * 创建内存中的 TimeTrak 接口
	 **********************************************/
	stub, err := fakeapi.NewServer(fakeapi.Options{
		JWTSecret:     cfg.Stub.JWTSecret,
		AdminUsername: cfg.Stub.AdminUsername,
		AdminPassword: cfg.Stub.AdminPassword,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to create stub api", "error", err)
		os.Exit(1)
	}
	stub.RegisterRoutes()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Stub.Port),
		Handler:      stub.Mux,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting stub api...", "port", cfg.Stub.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("stub api stopped", "error", err)
			os.Exit(1)
		}
	}()

	/**********************************************
	 * 写入演示数据
	 **********************************************/
	if cfg.Stub.SeedEmployees > 0 {
		go func() {
			baseURL := fmt.Sprintf("http://localhost:%s/api", cfg.Stub.Port)
			if err := seedDemo(context.Background(), cfg, baseURL, logger); err != nil {
				logger.Error("failed to seed stub api", "error", err)
			}
		}()
	}

	<-quit
	logger.Info("shutting down stub api...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Stub.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down stub api", "error", err)
	}
	logger.Info("stub api stopped")
}

// seedDemo 以管理员身份通过 HTTP 接口写入数据，和 cmd/seed 走同一条路径
func seedDemo(ctx context.Context, cfg *config.Config, baseURL string, logger *slog.Logger) error {
	// 等待监听就绪
	time.Sleep(200 * time.Millisecond)

	bare := api.NewClient(baseURL, cfg.APITimeout(), api.WithLogger(logger))
	sess := session.New(session.NewMemoryStore(), bare.Auth(), session.WithLogger(logger))
	client := api.NewClient(baseURL, cfg.APITimeout(), api.WithSession(sess), api.WithLogger(logger))

	if _, err := sess.Login(ctx, api.LoginRequest{Username: cfg.Stub.AdminUsername, Password: cfg.Stub.AdminPassword}); err != nil {
		return fmt.Errorf("login as stub admin: %w", err)
	}

	v, err := form.New()
	if err != nil {
		return err
	}
	s := seed.New(client, v, logger)
	if _, err := s.Departments(ctx, 4, 2); err != nil {
		return err
	}
	if _, err := s.Employees(ctx, cfg.Stub.SeedEmployees, "timetrak.local"); err != nil {
		return err
	}
	if _, err := s.Shifts(ctx, 28); err != nil {
		return err
	}
	return nil
}
