package store

import (
	"context"
	"fmt"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/view"
)

func (s *Store) Invites(ctx context.Context, page, size int) (domain.Page[domain.Invite], error) {
	if size <= 0 {
		size = view.DefaultPageSize
	}
	return query.Fetch(ctx, s.cache, query.Query[domain.Page[domain.Invite]]{
		Key: InvitesKey(page, size),
		Fn: func(ctx context.Context) (domain.Page[domain.Invite], error) {
			return s.api.Invites().ListInvites(ctx, pageOf(page, size))
		},
	})
}

func (s *Store) ActiveInvites(ctx context.Context) ([]domain.Invite, error) {
	return query.Fetch(ctx, s.cache, query.Query[[]domain.Invite]{
		Key: ActiveInvitesKey(),
		Fn:  s.api.Invites().ListActiveInvites,
	})
}

func (s *Store) CreateInvite(ctx context.Context, req api.CreateInviteRequest) (*domain.Invite, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Invite]{
		Name:           MutCreateInvite,
		Fn:             func(ctx context.Context) (*domain.Invite, error) { return s.api.Invites().CreateInvite(ctx, req) },
		Invalidates:    Invalidations[MutCreateInvite],
		SuccessMessage: "Invite created",
		ErrorMessage:   "Failed to create invite",
	})
}

func (s *Store) DeactivateInvite(ctx context.Context, code string) (*domain.Invite, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Invite]{
		Name:           MutDeactivateInvite,
		Fn:             func(ctx context.Context) (*domain.Invite, error) { return s.api.Invites().DeactivateInvite(ctx, code) },
		Invalidates:    Invalidations[MutDeactivateInvite],
		SuccessMessage: fmt.Sprintf("Invite %s deactivated", code),
		ErrorMessage:   "Failed to deactivate invite",
	})
}

// RegisterByInvite 是公开注册页的提交，没有登录态
func (s *Store) RegisterByInvite(ctx context.Context, req api.InviteRegistrationRequest) (*domain.Employee, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[*domain.Employee]{
		Name:           MutRegisterByInvite,
		Fn:             func(ctx context.Context) (*domain.Employee, error) { return s.api.Invites().Register(ctx, req) },
		Invalidates:    Invalidations[MutRegisterByInvite],
		SuccessMessage: "Registration submitted. An administrator will review your account.",
		ErrorMessage:   "Registration failed",
	})
}

// ValidateInvite 和 InviteURL 不缓存，每次都反映服务端的当前状态
func (s *Store) ValidateInvite(ctx context.Context, code string) (*domain.InviteValidation, error) {
	return s.api.Invites().ValidateInvite(ctx, code)
}

func (s *Store) InviteURL(ctx context.Context, code string) (string, error) {
	u, err := s.api.Invites().InviteURL(ctx, code)
	if err != nil {
		s.cache.Notifier().Error(notify.Message(err, "Failed to get invite link"))
		return "", err
	}
	return u, nil
}
