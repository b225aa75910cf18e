package mail

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/timetrak/client/internal/domain"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
}).ParseFS(templateFS, "templates/*.html"))

type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Decode 把队列中的消息解码为带具体 Data 类型的 MailMessage
func Decode(body []byte) (*domain.MailMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	msg := &domain.MailMessage{Type: env.Type, To: env.To}
	switch env.Type {
	case domain.MailTypeInvite:
		data := domain.InviteMailData{}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("decode invite mail data: %w", err)
		}
		msg.Data = data
	default:
		return nil, fmt.Errorf("unsupported mail type %q", env.Type)
	}
	return msg, nil
}

// Compose 根据消息类型选择模板并生成邮件
func Compose(from string, m *domain.MailMessage) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}

	switch m.Type {
	case domain.MailTypeInvite:
		data, ok := m.Data.(domain.InviteMailData)
		if !ok {
			return nil, fmt.Errorf("unexpected data %T for invite mail", m.Data)
		}
		if err := msg.SetBodyHTMLTemplate(templates.Lookup("invite.html"), data); err != nil {
			return nil, fmt.Errorf("render invite mail: %w", err)
		}
		subject := "You're invited to join TimeTrak"
		if data.DepartmentName != "" {
			subject = fmt.Sprintf("You're invited to join %s on TimeTrak", data.DepartmentName)
		}
		msg.Subject(subject)
	default:
		return nil, fmt.Errorf("unsupported mail type %q", m.Type)
	}
	return msg, nil
}
