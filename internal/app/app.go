// Package app 根据配置组装客户端各层：api.Client、会话、查询缓存和 store
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/config"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/mail"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/session"
	"github.com/timetrak/client/internal/store"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Notifier  notify.Notifier
	Client    *api.Client
	Session   *session.Session
	Cache     *query.Cache
	Store     *store.Store
	Validator *form.Validator

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier notify.Notifier) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Notifier: notifier}

	v, err := form.New()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}
	a.Validator = v

	sessionStore, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	// 刷新请求走不带会话的客户端
	bare := api.NewClient(cfg.API.BaseURL, cfg.APITimeout(), api.WithLogger(logger))
	a.Session = session.New(sessionStore, bare.Auth(), session.WithLogger(logger))
	a.Client = api.NewClient(cfg.API.BaseURL, cfg.APITimeout(),
		api.WithSession(a.Session),
		api.WithLogger(logger),
	)

	a.Cache = query.NewCache(
		query.WithDefaults(
			query.StaleTime(cfg.StaleTime()),
			query.Retry(cfg.Cache.Retry),
			query.RefetchOnFocus(cfg.Cache.RefetchOnFocus),
		),
		query.WithNotifier(notifier),
		query.WithLogger(logger),
	)
	a.Store = store.New(a.Client, a.Cache,
		store.WithCountsStaleTime(cfg.CountsStaleTime()),
		store.WithLogger(logger),
	)
	return a, nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	switch a.Config.Session.Backend {
	case "", "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", a.Config.Redis.Host, a.Config.Redis.Port),
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(a.Config.Redis.OperationTimeout)*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		ttl := time.Duration(a.Config.Session.TTL) * time.Second
		return session.NewRedisStore(rdb, a.Config.Session.Profile, ttl), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", a.Config.Session.Backend)
	}
}

// Sharer 连接 RabbitMQ 并返回邀请分享器，连接在 Close 时释放
func (a *App) Sharer() (*mail.Sharer, error) {
	if a.Config.RabbitMQ.DSN == "" {
		return nil, errors.New("RABBITMQ_DSN is required to share invites")
	}

	conn, err := amqp.Dial(a.Config.RabbitMQ.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := mail.DeclareQueue(ch, a.Config.RabbitMQ.Queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	a.closers = append(a.closers, ch.Close, conn.Close)

	timeout := time.Duration(a.Config.RabbitMQ.PublishTimeout) * time.Second
	publisher := mail.NewPublisher(ch, a.Config.RabbitMQ.Queue, timeout)
	return mail.NewSharer(a.Client.Invites(), publisher, a.Validator, a.Notifier), nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
