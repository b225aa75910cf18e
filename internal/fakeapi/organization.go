package fakeapi

import (
	"net/http"
	"strings"

	"github.com/timetrak/client/internal/domain"
)

func (s *Server) GetCompany(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	company := s.state.company
	s.mu.Unlock()
	s.writeJSON(w, r, http.StatusOK, company)
}

func (s *Server) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := &s.state.company
	c.Name, c.Email, c.Phone, c.Address = req.Name, req.Email, req.Phone, req.Address
	s.writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) ListDepartments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.state.departmentList()
	s.mu.Unlock()
	writePage(s, w, r, items)
}

func (s *Server) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid department ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.state.department(id)
	if !ok {
		s.notFound(w, r, "Department")
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

type departmentRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (s *Server) departmentNameTaken(name string, except int64) bool {
	for _, d := range s.state.departments {
		if d.ID != except && strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

func (s *Server) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.departmentNameTaken(req.Name, 0) {
		s.conflict(w, r, "Department name already exists")
		return
	}
	d := &domain.Department{ID: s.state.id(), Name: req.Name, Description: req.Description}
	s.state.departments[d.ID] = d
	out, _ := s.state.department(d.ID)
	s.writeJSON(w, r, http.StatusCreated, out)
}

func (s *Server) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid department ID")
		return
	}
	var req departmentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.state.departments[id]
	if !ok {
		s.notFound(w, r, "Department")
		return
	}
	if s.departmentNameTaken(req.Name, id) {
		s.conflict(w, r, "Department name already exists")
		return
	}
	d.Name, d.Description = req.Name, req.Description
	for _, e := range s.state.employees {
		if e.DepartmentID == id {
			e.DepartmentName = d.Name
		}
	}
	out, _ := s.state.department(id)
	s.writeJSON(w, r, http.StatusOK, out)
}

// DeleteDepartment 拒绝删除仍有员工或岗位的部门
func (s *Server) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid department ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.state.department(id)
	if !ok {
		s.notFound(w, r, "Department")
		return
	}
	if d.EmployeeCount > 0 || d.JobCount > 0 {
		s.conflict(w, r, "Department still has employees or jobs")
		return
	}
	delete(s.state.departments, id)
	w.WriteHeader(http.StatusNoContent)
}
