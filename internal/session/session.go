// Package session 管理访问令牌：注入到 api.Client 中提供令牌，并在 401 时刷新
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrNotLoggedIn = errors.New("not logged in")

// 访问令牌在到期前这么久就主动刷新
const refreshSkew = 30 * time.Second

// Authenticator 由 *api.AuthService 实现。它应当来自一个不带会话的 api.Client，
// 否则刷新请求本身遇到 401 时会再次触发刷新
type Authenticator interface {
	Login(ctx context.Context, req api.LoginRequest) (*domain.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Session struct {
	store  Store
	auth   Authenticator
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(store Store, auth Authenticator, opts ...Option) *Session {
	s := &Session{
		store:  store,
		auth:   auth,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccessToken 没有登录态时返回空字符串，请求会以匿名方式发出
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	tokens, err := s.store.Load(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotLoggedIn):
			return "", nil
		default:
			return "", err
		}
	}

	claims, err := ParseClaims(tokens.AccessToken)
	if err == nil && claims.ExpiresAt != nil && tokens.RefreshToken != "" &&
		s.now().Add(refreshSkew).After(claims.ExpiresAt.Time) {
		s.logger.Debug("access token about to expire, refreshing", "expiresAt", claims.ExpiresAt.Time)
		return s.Refresh(ctx)
	}
	return tokens.AccessToken, nil
}

// Refresh 同一时间只发出一次刷新请求，并发的 401 共享结果。
// 刷新不跟随发起者的 ctx 取消，每个调用方只是各自停止等待
func (s *Session) Refresh(ctx context.Context) (string, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *Session) refresh(ctx context.Context) (string, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}

	fresh, err := s.auth.Refresh(ctx, current.RefreshToken)
	if err != nil {
		switch status := api.StatusOf(err); status {
		case http.StatusUnauthorized, http.StatusForbidden:
			if derr := s.store.Delete(ctx); derr != nil {
				s.logger.Warn("failed to clear expired session", "error", derr)
			}
			return "", fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
		default:
			return "", err
		}
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}
	if fresh.User == nil {
		fresh.User = current.User
	}
	if err := s.store.Save(ctx, fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// Bootstrap 在启动时用已保存的刷新令牌恢复登录态
func (s *Session) Bootstrap(ctx context.Context) (*Claims, error) {
	if _, err := s.store.Load(ctx); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			s.logger.Debug("no stored session")
		}
		return nil, err
	}

	token, err := s.Refresh(ctx)
	if err != nil {
		switch status := api.StatusOf(err); {
		case errors.Is(err, ErrNotLoggedIn), status == http.StatusUnauthorized, status == http.StatusForbidden:
			s.logger.Debug("session bootstrap: not logged in", "status", status)
			return nil, ErrNotLoggedIn
		case status == http.StatusInternalServerError:
			// 服务端在没有刷新 cookie 时返回 500
			s.logger.Debug("session bootstrap: no refresh cookie", "status", status)
			return nil, ErrNotLoggedIn
		default:
			s.logger.Warn("session bootstrap failed", "error", err)
			return nil, err
		}
	}
	return ParseClaims(token)
}

func (s *Session) Login(ctx context.Context, req api.LoginRequest) (*domain.AuthTokens, error) {
	tokens, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Adopt 保存注册接口直接返回的令牌
func (s *Session) Adopt(ctx context.Context, tokens *domain.AuthTokens) error {
	if tokens == nil || tokens.AccessToken == "" {
		return errors.New("empty token pair")
	}
	return s.store.Save(ctx, tokens)
}

// Logout 总是清除本地登录态，服务端登出失败只记录日志
func (s *Session) Logout(ctx context.Context) error {
	tokens, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return nil
		}
		return err
	}
	if err := s.auth.Logout(ctx, tokens.RefreshToken); err != nil {
		s.logger.Warn("server logout failed", "error", err)
	}
	return s.store.Delete(ctx)
}

// Current 返回本地保存的登录态和访问令牌中的声明
func (s *Session) Current(ctx context.Context) (*domain.AuthTokens, *Claims, error) {
	tokens, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	claims, err := ParseClaims(tokens.AccessToken)
	if err != nil {
		return tokens, nil, err
	}
	return tokens, claims, nil
}

// ParseClaims 只解码不验签，签名由服务端校验
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

func (c *Claims) IsAdmin() bool {
	return c.Role == string(domain.RoleAdmin)
}
