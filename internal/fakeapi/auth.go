package fakeapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/timetrak/client/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const refreshCookieName = "refreshToken"

// issueTokens 生成访问令牌和刷新令牌，调用方需要持有 s.mu
func (s *Server) issueTokens(w http.ResponseWriter, a *account) (*domain.AuthTokens, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(a.user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			Subject:   strconv.FormatInt(a.user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	s.state.refreshTokens[refresh] = a.user.Username

	// 浏览器通过 http-only cookie 携带刷新令牌
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
	})

	user := a.user
	return &domain.AuthTokens{AccessToken: ss, RefreshToken: refresh, User: &user}, nil
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.state.accounts[req.Username]
	if !ok {
		s.errorResponse(w, r, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			s.errorResponse(w, r, http.StatusUnauthorized, "Invalid username or password")
		default:
			s.internalServerError(w, r, err)
		}
		return
	}

	tokens, err := s.issueTokens(w, a)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tokens)
}

// Refresh 在没有刷新 cookie 时返回 500，与真实服务端的行为一致
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		s.errorResponse(w, r, http.StatusInternalServerError, "Refresh token cookie is missing")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.state.refreshTokens[cookie.Value]
	if !ok {
		s.errorResponse(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	a, ok := s.state.accounts[username]
	if !ok {
		s.errorResponse(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// 刷新令牌只能使用一次
	delete(s.state.refreshTokens, cookie.Value)
	tokens, err := s.issueTokens(w, a)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tokens)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		s.mu.Lock()
		delete(s.state.refreshTokens, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:    refreshCookieName,
		Value:   "",
		Expires: s.now().Add(-time.Hour),
		Path:    "/",
	})
	s.writeJSON(w, r, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName  string `json:"companyName" validate:"required"`
		CompanyEmail string `json:"companyEmail" validate:"required,email"`
		AdminName    string `json:"adminName" validate:"required"`
		Username     string `json:"username" validate:"required"`
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=8"`
	}
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.usernameTaken(req.Username) {
		s.conflict(w, r, "Username already exists")
		return
	}

	s.state.company.Name = req.CompanyName
	s.state.company.Email = req.CompanyEmail
	a := s.state.addAccount(domain.User{
		Username: req.Username,
		Name:     req.AdminName,
		Email:    req.Email,
		Role:     domain.RoleAdmin,
	}, hash)

	tokens, err := s.issueTokens(w, a)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, tokens)
}
