package api

import (
	"context"
	"net/http"

	"github.com/timetrak/client/internal/domain"
)

const RefreshCookieName = "refreshToken"

type AuthService struct {
	c *Client
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.AuthTokens, error) {
	return call[*domain.AuthTokens](ctx, s.c, http.MethodPost, "/auth/login", req)
}

// Refresh 用刷新令牌换取新的访问令牌；浏览器里刷新令牌放在 cookie 中，这里保持相同的传递方式
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	var out *domain.AuthTokens
	req := request{method: http.MethodPost, path: "/auth/refresh"}
	if refreshToken != "" {
		req.cookies = []*http.Cookie{{Name: RefreshCookieName, Value: refreshToken}}
	}
	if err := s.c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	req := request{method: http.MethodPost, path: "/auth/logout"}
	if refreshToken != "" {
		req.cookies = []*http.Cookie{{Name: RefreshCookieName, Value: refreshToken}}
	}
	return s.c.do(ctx, req, nil)
}
