package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/notify"
)

// InviteLinker 由 *api.InviteService 实现
type InviteLinker interface {
	InviteURL(ctx context.Context, code string) (string, error)
}

type Sharer struct {
	links     InviteLinker
	publisher *Publisher
	validator *form.Validator
	notifier  notify.Notifier
}

func NewSharer(links InviteLinker, publisher *Publisher, v *form.Validator, notifier notify.Notifier) *Sharer {
	return &Sharer{links: links, publisher: publisher, validator: v, notifier: notifier}
}

// ShareInvite 校验收件人后取得邀请链接，再把邀请邮件放入队列。
// 收件人无效时只显示校验信息，不会发布任何消息
func (s *Sharer) ShareInvite(ctx context.Context, invite domain.Invite, f form.ShareInviteForm) error {
	f.To = strings.TrimSpace(f.To)
	_, err := form.Submit(ctx, s.validator, s.notifier, f, func(ctx context.Context, f form.ShareInviteForm) (struct{}, error) {
		if err := s.share(ctx, invite, f.To, f.Message); err != nil {
			s.notifier.Error(notify.Message(err, "Failed to share invite"))
			return struct{}{}, err
		}
		s.notifier.Success("Invite sent to " + f.To)
		return struct{}{}, nil
	})
	return err
}

func (s *Sharer) share(ctx context.Context, invite domain.Invite, to, message string) error {
	if !invite.IsActive {
		return errors.New("invite is no longer active")
	}

	url, err := s.links.InviteURL(ctx, invite.InviteCode)
	if err != nil {
		return err
	}

	return s.publisher.Publish(ctx, domain.MailMessage{
		Type: domain.MailTypeInvite,
		To:   to,
		Data: domain.InviteMailData{
			InviteCode:     invite.InviteCode,
			URL:            url,
			DepartmentName: invite.DepartmentName,
			ExpiresAt:      invite.ExpiresAt,
			Message:        message,
		},
	})
}
