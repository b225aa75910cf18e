package fakeapi

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/timetrak/client/internal/domain"
)

type createInviteRequest struct {
	DepartmentID  int64 `json:"departmentId" validate:"required"`
	MaxUses       int   `json:"maxUses" validate:"gte=0,lte=1000"`
	ExpiresInDays int   `json:"expiresInDays" validate:"gte=0,lte=365"`
}

// inviteList 最新创建的邀请码在前
func (s *Server) inviteList(keep func(domain.Invite) bool) []domain.Invite {
	out := make([]domain.Invite, 0, len(s.state.invites))
	for _, inv := range s.state.invites {
		if keep(*inv) {
			out = append(out, *inv)
		}
	}
	slices.SortFunc(out, func(a, b domain.Invite) int {
		if c := b.ExpiresAt.Compare(a.ExpiresAt); c != 0 {
			return c
		}
		return strings.Compare(a.InviteCode, b.InviteCode)
	})
	return out
}

func (s *Server) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if req.MaxUses == 0 {
		req.MaxUses = 1
	}
	if req.ExpiresInDays == 0 {
		req.ExpiresInDays = 7
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dept, ok := s.state.departments[req.DepartmentID]
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Department does not exist")
		return
	}
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	inv := &domain.Invite{
		InviteCode:     code,
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		MaxUses:        req.MaxUses,
		ExpiresAt:      s.now().Add(time.Duration(req.ExpiresInDays) * 24 * time.Hour),
		IsActive:       true,
	}
	s.state.invites[code] = inv
	s.writeJSON(w, r, http.StatusCreated, inv)
}

func (s *Server) ListInvites(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.inviteList(func(domain.Invite) bool { return true })
	s.mu.Unlock()
	writePage(s, w, r, items)
}

// ListActiveInvites 总是返回数组
func (s *Server) ListActiveInvites(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	s.mu.Lock()
	items := s.inviteList(func(inv domain.Invite) bool { return inv.Usable(now) })
	s.mu.Unlock()
	s.writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) DeactivateInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.state.invites[code]
	if !ok {
		s.notFound(w, r, "Invite")
		return
	}
	inv.IsActive = false
	s.writeJSON(w, r, http.StatusOK, inv)
}

func (s *Server) GetInviteURL(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	_, ok := s.state.invites[code]
	s.mu.Unlock()
	if !ok {
		s.notFound(w, r, "Invite")
		return
	}
	u := strings.TrimRight(s.opts.PublicURL, "/") + "/register?code=" + url.QueryEscape(code)
	s.writeJSON(w, r, http.StatusOK, map[string]string{"url": u})
}

// ValidateInvite 对无效的邀请码也返回 200，由 valid 字段区分
func (s *Server) ValidateInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.state.invites[code]
	switch {
	case !ok:
		s.writeJSON(w, r, http.StatusOK, domain.InviteValidation{Message: "Invite code not found"})
	case !inv.Usable(s.now()):
		s.writeJSON(w, r, http.StatusOK, domain.InviteValidation{Message: "Invite code is no longer valid"})
	default:
		s.writeJSON(w, r, http.StatusOK, domain.InviteValidation{
			Valid:          true,
			DepartmentName: inv.DepartmentName,
			CompanyName:    s.state.company.Name,
		})
	}
}

type inviteRegistrationRequest struct {
	InviteCode string `json:"inviteCode" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Username   string `json:"username" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" validate:"required,min=6"`
}

// RegisterByInvite 创建的员工需要管理员审批
func (s *Server) RegisterByInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRegistrationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.state.invites[req.InviteCode]
	if !ok || !inv.Usable(s.now()) {
		s.errorResponse(w, r, http.StatusBadRequest, "Invite code is invalid or expired")
		return
	}
	e, ok := s.createEmployee(w, r, registerEmployeeRequest{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		DepartmentID: inv.DepartmentID,
		Password:     req.Password,
	}, domain.EmployeeStatusPending)
	if !ok {
		return
	}
	inv.CurrentUses++
	s.writeJSON(w, r, http.StatusCreated, e)
}
