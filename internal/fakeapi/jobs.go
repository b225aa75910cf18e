package fakeapi

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
)

func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	s.listJobsWhere(w, r, func(domain.Job) bool { return true })
}

func (s *Server) ListJobsByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid department ID")
		return
	}
	s.listJobsWhere(w, r, func(j domain.Job) bool { return j.DepartmentID == departmentID })
}

func (s *Server) SearchJobs(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	s.listJobsWhere(w, r, func(j domain.Job) bool {
		return strings.Contains(strings.ToLower(j.Title), q) || strings.Contains(strings.ToLower(j.Description), q)
	})
}

func (s *Server) listJobsWhere(w http.ResponseWriter, r *http.Request, keep func(domain.Job) bool) {
	s.mu.Lock()
	items := filter(sorted(s.state.jobs), keep)
	s.mu.Unlock()
	writePage(s, w, r, items)
}

func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.state.jobs[id]
	if !ok {
		s.notFound(w, r, "Job")
		return
	}
	s.writeJSON(w, r, http.StatusOK, j)
}

type jobRequest struct {
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	HourlyWage   decimal.Decimal `json:"hourlyWage"`
	DepartmentID int64           `json:"departmentId" validate:"required"`
}

func (s *Server) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if !req.HourlyWage.IsPositive() {
		s.errorResponse(w, r, http.StatusBadRequest, "Hourly wage must be greater than 0")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.departments[req.DepartmentID]; !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Department does not exist")
		return
	}
	j := &domain.Job{
		ID:           s.state.id(),
		Title:        req.Title,
		Description:  req.Description,
		HourlyWage:   req.HourlyWage,
		DepartmentID: req.DepartmentID,
	}
	s.state.jobs[j.ID] = j
	s.writeJSON(w, r, http.StatusCreated, j)
}

func (s *Server) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}
	var req jobRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if !req.HourlyWage.IsPositive() {
		s.errorResponse(w, r, http.StatusBadRequest, "Hourly wage must be greater than 0")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.state.jobs[id]
	if !ok {
		s.notFound(w, r, "Job")
		return
	}
	if _, ok := s.state.departments[req.DepartmentID]; !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Department does not exist")
		return
	}
	j.Title, j.Description, j.HourlyWage, j.DepartmentID = req.Title, req.Description, req.HourlyWage, req.DepartmentID
	for _, ej := range s.state.assignments {
		if ej.JobID == id {
			ej.JobTitle = j.Title
		}
	}
	s.writeJSON(w, r, http.StatusOK, j)
}

func (s *Server) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.jobs[id]; !ok {
		s.notFound(w, r, "Job")
		return
	}
	for _, ej := range s.state.assignments {
		if ej.JobID == id {
			s.conflict(w, r, "Job is still assigned to employees")
			return
		}
	}
	delete(s.state.jobs, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListEmployeeJobs(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	s.mu.Lock()
	items := filter(sorted(s.state.assignments), func(ej domain.EmployeeJob) bool { return ej.EmployeeID == employeeID })
	s.mu.Unlock()
	s.writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) AssignJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64            `json:"employeeId" validate:"required"`
		JobID      int64            `json:"jobId" validate:"required"`
		HourlyWage *decimal.Decimal `json:"hourlyWage"`
	}
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.employees[req.EmployeeID]
	if !ok || e.Status == domain.EmployeeStatusDeleted {
		s.notFound(w, r, "Employee")
		return
	}
	j, ok := s.state.jobs[req.JobID]
	if !ok {
		s.notFound(w, r, "Job")
		return
	}
	for _, ej := range s.state.assignments {
		if ej.EmployeeID == e.ID && ej.JobID == j.ID {
			s.conflict(w, r, "Employee already holds this job")
			return
		}
	}

	ej := &domain.EmployeeJob{
		EmployeeJobID: s.state.id(),
		EmployeeID:    e.ID,
		EmployeeName:  e.Name,
		JobID:         j.ID,
		JobTitle:      j.Title,
		HourlyWage:    req.HourlyWage,
	}
	s.state.assignments[ej.EmployeeJobID] = ej
	s.writeJSON(w, r, http.StatusCreated, ej)
}

func (s *Server) UnassignJob(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid assignment ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.assignments[id]; !ok {
		s.notFound(w, r, "Assignment")
		return
	}
	if s.state.activeShift(id) != nil {
		s.conflict(w, r, "Assignment has an active shift")
		return
	}
	delete(s.state.assignments, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) UpdateWageOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid assignment ID")
		return
	}
	var req struct {
		HourlyWage *decimal.Decimal `json:"hourlyWage"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.HourlyWage != nil && !req.HourlyWage.IsPositive() {
		s.errorResponse(w, r, http.StatusBadRequest, "Hourly wage must be greater than 0")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ej, ok := s.state.assignments[id]
	if !ok {
		s.notFound(w, r, "Assignment")
		return
	}
	ej.HourlyWage = req.HourlyWage
	s.writeJSON(w, r, http.StatusOK, ej)
}
