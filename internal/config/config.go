package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Log         struct {
		Level string `env:"LEVEL" envDefault:"info"`
	} `envPrefix:"LOG_"`
	API struct {
		BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080/api"`
		Timeout int    `env:"TIMEOUT" envDefault:"15"` // 秒
	} `envPrefix:"API_"`
	Cache struct {
		StaleTime       int  `env:"STALE_TIME" envDefault:"300"`       // 秒，默认 5 分钟
		CountsStaleTime int  `env:"COUNTS_STALE_TIME" envDefault:"30"` // 秒
		Retry           int  `env:"RETRY" envDefault:"1"`
		RefetchOnFocus  bool `env:"REFETCH_ON_FOCUS" envDefault:"true"`
	} `envPrefix:"CACHE_"`
	Session struct {
		Backend string `env:"BACKEND" envDefault:"memory"` // memory 或 redis
		Profile string `env:"PROFILE" envDefault:"default"`
		TTL     int    `env:"TTL" envDefault:"604800"` // 7 天
	} `envPrefix:"SESSION_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	Stub struct {
		Port            string `env:"PORT" envDefault:"8080"`
		JWTSecret       string `env:"JWT_SECRET" envDefault:"timetrak-stub-secret"`
		AdminUsername   string `env:"ADMIN_USERNAME" envDefault:"admin"`
		AdminPassword   string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
		SeedEmployees   int    `env:"SEED_EMPLOYEES" envDefault:"25"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"STUB_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// ValidateMailWorker 检查只有邀请邮件 worker 才需要的配置项
func (c *Config) ValidateMailWorker() error {
	switch {
	case c.RabbitMQ.DSN == "":
		return errors.New("RABBITMQ_DSN is required")
	case c.Email.SMTP.Host == "":
		return errors.New("EMAIL_SMTP_HOST is required")
	case c.Email.SMTP.Username == "":
		return errors.New("EMAIL_SMTP_USERNAME is required")
	}
	return nil
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

func (c *Config) StaleTime() time.Duration {
	return time.Duration(c.Cache.StaleTime) * time.Second
}

func (c *Config) CountsStaleTime() time.Duration {
	return time.Duration(c.Cache.CountsStaleTime) * time.Second
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
