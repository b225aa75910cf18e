package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/timetrak/client/internal/domain"
)

type InviteService struct {
	c *Client
}

func (s *InviteService) CreateInvite(ctx context.Context, req CreateInviteRequest) (*domain.Invite, error) {
	return call[*domain.Invite](ctx, s.c, http.MethodPost, "/invites", req)
}

func (s *InviteService) ListInvites(ctx context.Context, p PageRequest) (domain.Page[domain.Invite], error) {
	return getPage[domain.Invite](ctx, s.c, "/invites", p.Values())
}

func (s *InviteService) ListActiveInvites(ctx context.Context) ([]domain.Invite, error) {
	return getList[domain.Invite](ctx, s.c, "/invites/active", nil)
}

func (s *InviteService) DeactivateInvite(ctx context.Context, code string) (*domain.Invite, error) {
	return call[*domain.Invite](ctx, s.c, http.MethodPatch, "/invites/"+url.PathEscape(code)+"/deactivate", nil)
}

func (s *InviteService) ValidateInvite(ctx context.Context, code string) (*domain.InviteValidation, error) {
	return get[*domain.InviteValidation](ctx, s.c, "/invites/validate/"+url.PathEscape(code), nil)
}

func (s *InviteService) Register(ctx context.Context, req InviteRegistrationRequest) (*domain.Employee, error) {
	return call[*domain.Employee](ctx, s.c, http.MethodPost, "/invites/register", req)
}

func (s *InviteService) InviteURL(ctx context.Context, code string) (string, error) {
	out, err := get[InviteURL](ctx, s.c, "/invites/"+url.PathEscape(code)+"/url", nil)
	return out.URL, err
}
