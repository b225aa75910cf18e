package mail

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	gomail "github.com/wneessen/go-mail"
)

// Sender 是 *gomail.Client 中发送邮件所需的部分
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Acknowledger 对应 amqp.Delivery 的确认方法
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	sender Sender
	from   string
	logger *slog.Logger
}

func NewWorker(sender Sender, from string, logger *slog.Logger) *Worker {
	return &Worker{sender: sender, from: from, logger: logger}
}

// Handle 处理一条消息：无法解析或构建的消息直接丢弃，发送失败的消息重新入队
func (w *Worker) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	m, err := Decode(body)
	if err != nil {
		w.logger.Error("failed to decode mail message", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	msg, err := Compose(w.from, m)
	if err != nil {
		w.logger.Error("failed to compose mail", "type", m.Type, "error", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSendWithContext(ctx, msg); err != nil {
		w.logger.Error("failed to send mail", "type", m.Type, "to", m.To, "error", err)
		_ = ack.Nack(false, true)
		return
	}

	w.logger.Info("mail sent", "type", m.Type, "to", m.To)
	_ = ack.Ack(false)
}

// Consume 处理 deliveries 直到 ctx 结束或通道关闭
func (w *Worker) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return
			}
			w.Handle(ctx, d.Body, d)
		}
	}
}
