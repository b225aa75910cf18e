package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/timetrak/client/internal/config"
	"github.com/timetrak/client/internal/mail"
	gomail "github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * 读取配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.ValidateMailWorker(); err != nil {
		logger.Error("invalid mail worker config", "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := gomail.NewClient(cfg.Email.SMTP.Host,
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithSSL(),
		gomail.WithPort(cfg.Email.SMTP.Port),
		gomail.WithUsername(cfg.Email.SMTP.Username),
		gomail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// 启动时先确认能连上邮件服务器
	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("failed to connect to smtp server", "error", err)
		os.Exit(1)
	}
	_ = client.Close()

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	q, err := mail.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("failed to declare queue", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // 由 RabbitMQ 分配消费者标识
		false, // 手动确认
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to consume queue", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, stop := context.WithCancel(context.Background())
	worker := mail.NewWorker(client, cfg.Email.SMTP.Username, logger)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Consume(ctx, deliveries)
	}()

	logger.Info("waiting for messages (press CTRL+C to exit)", "queue", q.Name)
	<-sigChan

	logger.Info("shutting down mail worker...")
	stop()
	wg.Wait()
	logger.Info("mail worker stopped")
}
