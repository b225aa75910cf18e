package fakeapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/timetrak/client/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) ListEmployees(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.state.employeeList()
	s.mu.Unlock()
	writePage(s, w, r, items)
}

func (s *Server) ListActiveEmployees(w http.ResponseWriter, r *http.Request) {
	s.listEmployeesWhere(w, r, func(e domain.Employee) bool { return e.Status == domain.EmployeeStatusActive })
}

func (s *Server) ListEmployeesByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.EmployeeStatus(strings.ToUpper(chi.URLParam(r, "status")))
	s.listEmployeesWhere(w, r, func(e domain.Employee) bool { return e.Status == status })
}

func (s *Server) ListEmployeesByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid department ID")
		return
	}
	s.listEmployeesWhere(w, r, func(e domain.Employee) bool { return e.DepartmentID == departmentID })
}

func (s *Server) SearchEmployees(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	status := domain.EmployeeStatus(strings.ToUpper(r.URL.Query().Get("status")))
	s.listEmployeesWhere(w, r, func(e domain.Employee) bool {
		if status != "" && e.Status != status {
			return false
		}
		return strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Username), q) ||
			strings.Contains(strings.ToLower(e.Email), q)
	})
}

func (s *Server) listEmployeesWhere(w http.ResponseWriter, r *http.Request, keep func(domain.Employee) bool) {
	s.mu.Lock()
	items := filter(s.state.employeeList(), keep)
	s.mu.Unlock()
	writePage(s, w, r, items)
}

func (s *Server) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.state.employees[id]
	if !ok || e.Status == domain.EmployeeStatusDeleted {
		s.notFound(w, r, "Employee")
		return
	}
	s.writeJSON(w, r, http.StatusOK, e)
}

type registerEmployeeRequest struct {
	Name         string `json:"name" validate:"required"`
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	DepartmentID int64  `json:"departmentId" validate:"required"`
	Role         string `json:"role" validate:"omitempty,oneof=ADMIN EMPLOYEE"`
	Password     string `json:"password"`
}

// createEmployee 调用方需要持有 s.mu
func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request, req registerEmployeeRequest, status domain.EmployeeStatus) (*domain.Employee, bool) {
	dept, ok := s.state.departments[req.DepartmentID]
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Department does not exist")
		return nil, false
	}
	if s.state.usernameTaken(req.Username) {
		s.conflict(w, r, "Username already exists")
		return nil, false
	}
	for _, e := range s.state.employees {
		if strings.EqualFold(e.Email, req.Email) && e.Status != domain.EmployeeStatusDeleted {
			s.conflict(w, r, "Email already exists")
			return nil, false
		}
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleEmployee
	}
	e := &domain.Employee{
		ID:             s.state.id(),
		Name:           req.Name,
		Username:       req.Username,
		Email:          req.Email,
		Phone:          req.Phone,
		Status:         status,
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		Role:           role,
	}
	s.state.employees[e.ID] = e

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
		if err != nil {
			s.internalServerError(w, r, err)
			return nil, false
		}
		s.state.accounts[e.Username] = &account{
			user:         domain.User{ID: e.ID, Username: e.Username, Name: e.Name, Email: e.Email, Role: role},
			passwordHash: hash,
		}
	}
	return e, true
}

// RegisterEmployee 由管理员创建的员工直接为 ACTIVE
func (s *Server) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	var req registerEmployeeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.createEmployee(w, r, req, domain.EmployeeStatusActive)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusCreated, e)
}

// 每个动作允许的起始状态和目标状态
var transitions = map[string]struct {
	from []domain.EmployeeStatus
	to   domain.EmployeeStatus
}{
	"approve":    {from: []domain.EmployeeStatus{domain.EmployeeStatusPending}, to: domain.EmployeeStatusActive},
	"reject":     {from: []domain.EmployeeStatus{domain.EmployeeStatusPending}, to: domain.EmployeeStatusRejected},
	"activate":   {from: []domain.EmployeeStatus{domain.EmployeeStatusDeactivated, domain.EmployeeStatusRejected}, to: domain.EmployeeStatusActive},
	"deactivate": {from: []domain.EmployeeStatus{domain.EmployeeStatusActive}, to: domain.EmployeeStatusDeactivated},
}

func (s *Server) TransitionEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	action := chi.URLParam(r, "action")
	t, ok := transitions[action]
	if !ok {
		s.notFound(w, r, "Action")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.employees[id]
	if !ok || e.Status == domain.EmployeeStatusDeleted {
		s.notFound(w, r, "Employee")
		return
	}
	allowed := false
	for _, from := range t.from {
		if e.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		s.errorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Cannot %s an employee with status %s", action, e.Status))
		return
	}
	e.Status = t.to
	s.writeJSON(w, r, http.StatusOK, e)
}

// DeleteEmployee 软删除，员工不再出现在任何列表中
func (s *Server) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.employees[id]
	if !ok || e.Status == domain.EmployeeStatusDeleted {
		s.notFound(w, r, "Employee")
		return
	}
	e.Status = domain.EmployeeStatusDeleted
	delete(s.state.accounts, e.Username)
	w.WriteHeader(http.StatusNoContent)
}
