package api

import (
	"context"
	"net/http"

	"github.com/timetrak/client/internal/domain"
)

type CompanyService struct {
	c *Client
}

func (s *CompanyService) GetCompany(ctx context.Context) (*domain.Company, error) {
	return get[*domain.Company](ctx, s.c, "/admin/organization/company", nil)
}

func (s *CompanyService) UpdateCompany(ctx context.Context, req CompanyRequest) (*domain.Company, error) {
	return call[*domain.Company](ctx, s.c, http.MethodPatch, "/admin/organization/company", req)
}

func (s *CompanyService) RegisterCompany(ctx context.Context, req CompanyRegistrationRequest) (*domain.AuthTokens, error) {
	return call[*domain.AuthTokens](ctx, s.c, http.MethodPost, "/auth/register/company", req)
}
