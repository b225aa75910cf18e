package mail_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/mail"
	"github.com/timetrak/client/internal/notify"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var validator = form.Must(form.New())

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{key: key, msg: msg})
	return nil
}

type fakeLinker struct {
	url string
	err error
}

func (l fakeLinker) InviteURL(_ context.Context, code string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.url + code, nil
}

type fakeSender struct {
	err  error
	sent []*gomail.Msg
}

func (s *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*gomail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAck) Ack(bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

var invite = domain.Invite{
	InviteCode:     "ABCD1234",
	DepartmentName: "Kitchen",
	MaxUses:        1,
	ExpiresAt:      time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	IsActive:       true,
}

func TestSharer_PublishesInviteMail(t *testing.T) {
	ch := &fakeChannel{}
	rec := &notify.Recorder{}
	s := mail.NewSharer(fakeLinker{url: "https://timetrak.test/join/"}, mail.NewPublisher(ch, "", time.Second), validator, rec)

	err := s.ShareInvite(context.Background(), invite, form.ShareInviteForm{To: " jane@example.com ", Message: "Welcome aboard"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Invite sent to jane@example.com"}, rec.Successes())

	require.Len(t, ch.sent, 1)
	p := ch.sent[0]
	assert.Equal(t, mail.DefaultQueue, p.key)
	assert.Equal(t, amqp.Persistent, p.msg.DeliveryMode)
	assert.Equal(t, "application/json", p.msg.ContentType)

	m, err := mail.Decode(p.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, domain.MailTypeInvite, m.Type)
	assert.Equal(t, "jane@example.com", m.To)
	data, ok := m.Data.(domain.InviteMailData)
	require.True(t, ok)
	assert.Equal(t, "https://timetrak.test/join/ABCD1234", data.URL)
	assert.Equal(t, "Kitchen", data.DepartmentName)
	assert.Equal(t, "Welcome aboard", data.Message)
	assert.True(t, data.ExpiresAt.Equal(invite.ExpiresAt))
}

func TestSharer_Failures(t *testing.T) {
	inactive := invite
	inactive.IsActive = false

	tests := []struct {
		name   string
		invite domain.Invite
		to     string
		linker fakeLinker
		chErr  error
		toast  string
	}{
		{"bad recipient", invite, "not an address", fakeLinker{}, nil, "Please enter a valid e-mail address"},
		{"missing recipient", invite, "  ", fakeLinker{}, nil, "Please enter a recipient"},
		{"inactive invite", inactive, "jane@example.com", fakeLinker{}, nil, "Failed to share invite"},
		{"link lookup fails", invite, "jane@example.com", fakeLinker{err: errors.New("boom")}, nil, "Failed to share invite"},
		{"broker unavailable", invite, "jane@example.com", fakeLinker{}, amqp.ErrClosed, "Failed to share invite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{err: tt.chErr}
			rec := &notify.Recorder{}
			s := mail.NewSharer(tt.linker, mail.NewPublisher(ch, "invites", 0), validator, rec)

			err := s.ShareInvite(context.Background(), tt.invite, form.ShareInviteForm{To: tt.to})
			require.Error(t, err)
			assert.Empty(t, ch.sent)
			assert.Equal(t, []string{tt.toast}, rec.Errors())
			assert.Empty(t, rec.Successes())
		})
	}
}

func TestSharer_InvalidRecipientSkipsLinkLookup(t *testing.T) {
	ch := &fakeChannel{}
	rec := &notify.Recorder{}
	s := mail.NewSharer(fakeLinker{err: errors.New("must not be called")}, mail.NewPublisher(ch, "", 0), validator, rec)

	err := s.ShareInvite(context.Background(), invite, form.ShareInviteForm{To: "jane@"})
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Recipient", verr.Fields[0].Field)
	assert.Empty(t, ch.sent)
}

func TestDecode(t *testing.T) {
	_, err := mail.Decode([]byte(`{"type":"newsletter","to":"a@b.c","data":{}}`))
	assert.ErrorContains(t, err, "unsupported mail type")

	_, err = mail.Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = mail.Decode([]byte(`{"type":"invite","to":"a@b.c","data":"oops"}`))
	assert.ErrorContains(t, err, "decode invite mail data")
}

func TestCompose(t *testing.T) {
	m := &domain.MailMessage{
		Type: domain.MailTypeInvite,
		To:   "jane@example.com",
		Data: domain.InviteMailData{
			InviteCode:     "ABCD1234",
			URL:            "https://timetrak.test/join/ABCD1234",
			DepartmentName: "Kitchen",
			ExpiresAt:      invite.ExpiresAt,
		},
	}

	msg, err := mail.Compose("noreply@timetrak.test", m)
	require.NoError(t, err)
	assert.Equal(t, []string{"You're invited to join Kitchen on TimeTrak"}, msg.GetGenHeader(gomail.HeaderSubject))

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, rcpts)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ABCD1234")

	_, err = mail.Compose("noreply@timetrak.test", &domain.MailMessage{Type: domain.MailTypeInvite, To: "jane@example.com", Data: "wrong"})
	assert.Error(t, err)
}

func TestWorker_Handle(t *testing.T) {
	valid := []byte(`{"type":"invite","to":"jane@example.com","data":{"inviteCode":"ABCD1234","url":"https://timetrak.test/join/ABCD1234","departmentName":"Kitchen","expiresAt":"2024-04-01T00:00:00Z"}}`)

	tests := []struct {
		name    string
		body    []byte
		sendErr error
		acked   bool
		requeue bool
	}{
		{name: "sent", body: valid, acked: true},
		{name: "undecodable is dropped", body: []byte(`{}`)},
		{name: "bad recipient is dropped", body: []byte(`{"type":"invite","to":"nobody","data":{}}`)},
		{name: "smtp failure is requeued", body: valid, sendErr: errors.New("421 try again later"), requeue: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.sendErr}
			ack := &fakeAck{}
			w := mail.NewWorker(sender, "noreply@timetrak.test", discard)

			w.Handle(context.Background(), tt.body, ack)

			assert.Equal(t, tt.acked, ack.acked)
			assert.Equal(t, !tt.acked, ack.nacked)
			assert.Equal(t, tt.requeue, ack.requeue)
			if tt.acked {
				assert.Len(t, sender.sent, 1)
			}
		})
	}
}

func TestWorker_ConsumeStopsWhenChannelCloses(t *testing.T) {
	deliveries := make(chan amqp.Delivery)
	close(deliveries)

	done := make(chan struct{})
	go func() {
		mail.NewWorker(&fakeSender{}, "noreply@timetrak.test", discard).Consume(context.Background(), deliveries)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not return after the channel closed")
	}
}
