package fakeapi

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
)

const dateTimeLocal = "2006-01-02T15:04"

// shiftList 按上班时间升序
func (s *Server) shiftList(keep func(domain.Shift) bool) []domain.Shift {
	items := filter(sorted(s.state.shifts), keep)
	slices.SortFunc(items, byClockIn)
	return items
}

func (s *Server) listShiftsWhere(w http.ResponseWriter, r *http.Request, keep func(domain.Shift) bool) {
	s.mu.Lock()
	items := s.shiftList(keep)
	s.mu.Unlock()
	writePage(s, w, r, items)
}

func (s *Server) ListShifts(w http.ResponseWriter, r *http.Request) {
	s.listShiftsWhere(w, r, func(domain.Shift) bool { return true })
}

func (s *Server) ListShiftsByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.ShiftStatus(strings.ToUpper(chi.URLParam(r, "status")))
	s.listShiftsWhere(w, r, func(sh domain.Shift) bool { return sh.Status == status })
}

func (s *Server) ListShiftsByPeriod(w http.ResponseWriter, r *http.Request) {
	start, err1 := time.Parse(dateLayout, r.URL.Query().Get("start"))
	end, err2 := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "start and end must be dates in YYYY-MM-DD format")
		return
	}
	end = end.AddDate(0, 0, 1)
	s.listShiftsWhere(w, r, func(sh domain.Shift) bool {
		return !sh.ClockIn.Before(start) && sh.ClockIn.Before(end)
	})
}

func (s *Server) ListShiftsByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	s.listShiftsWhere(w, r, func(sh domain.Shift) bool { return sh.EmployeeID == employeeID })
}

func (s *Server) ListShiftsByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid department ID")
		return
	}
	s.mu.Lock()
	items := s.shiftList(func(sh domain.Shift) bool { return s.state.shiftDepartment(sh) == departmentID })
	s.mu.Unlock()
	writePage(s, w, r, items)
}

// ListShiftsThisWeek 一周从周一开始
func (s *Server) ListShiftsThisWeek(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7)
	s.listShiftsWhere(w, r, func(sh domain.Shift) bool {
		return !sh.ClockIn.Before(start) && sh.ClockIn.Before(end)
	})
}

func (s *Server) ListShiftsThisMonth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	s.listShiftsWhere(w, r, func(sh domain.Shift) bool {
		return !sh.ClockIn.Before(start) && sh.ClockIn.Before(end)
	})
}

func (s *Server) GetShift(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid shift ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.state.shifts[id]
	if !ok {
		s.notFound(w, r, "Shift")
		return
	}
	s.writeJSON(w, r, http.StatusOK, sh)
}

type shiftRequest struct {
	EmployeeJobID int64              `json:"employeeJobId" validate:"required"`
	ClockIn       string             `json:"clockIn" validate:"required"`
	ClockOut      *string            `json:"clockOut"`
	Status        domain.ShiftStatus `json:"status" validate:"required,oneof=ACTIVE COMPLETED CANCELLED"`
	Notes         string             `json:"notes"`
}

// applyShift 校验请求并写入 sh，错误信息可以直接返回给客户端
func (s *Server) applyShift(sh *domain.Shift, req shiftRequest) error {
	ej, ok := s.state.assignments[req.EmployeeJobID]
	if !ok {
		return fmt.Errorf("Assignment %d does not exist", req.EmployeeJobID)
	}
	clockIn, err := time.Parse(dateTimeLocal, req.ClockIn)
	if err != nil {
		return fmt.Errorf("clockIn must be in YYYY-MM-DDTHH:MM format")
	}

	var clockOut *time.Time
	if req.ClockOut != nil {
		t, err := time.Parse(dateTimeLocal, *req.ClockOut)
		if err != nil {
			return fmt.Errorf("clockOut must be in YYYY-MM-DDTHH:MM format")
		}
		if !t.After(clockIn) {
			return fmt.Errorf("Clock-out must be after clock-in")
		}
		clockOut = &t
	}
	switch {
	case req.Status == domain.ShiftStatusActive && clockOut != nil:
		return fmt.Errorf("An active shift cannot have a clock-out time")
	case req.Status == domain.ShiftStatusCompleted && clockOut == nil:
		return fmt.Errorf("A completed shift requires a clock-out time")
	}
	if req.Status == domain.ShiftStatusActive {
		if active := s.state.activeShift(ej.EmployeeJobID); active != nil && active.ID != sh.ID {
			return fmt.Errorf("Assignment %d already has an active shift", ej.EmployeeJobID)
		}
	}

	sh.EmployeeJobID = ej.EmployeeJobID
	sh.EmployeeID = ej.EmployeeID
	sh.EmployeeName = ej.EmployeeName
	sh.JobTitle = ej.JobTitle
	sh.ClockIn = clockIn
	sh.ClockOut = clockOut
	sh.Status = req.Status
	sh.Notes = req.Notes
	sh.ShiftEarnings = decimal.Zero
	if clockOut != nil {
		_, sh.ShiftEarnings = earnings(clockIn, *clockOut, s.state.wage(ej))
	}
	return nil
}

func (s *Server) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh := &domain.Shift{}
	if err := s.applyShift(sh, req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sh.ID = s.state.id()
	s.state.shifts[sh.ID] = sh
	s.writeJSON(w, r, http.StatusCreated, sh)
}

func (s *Server) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid shift ID")
		return
	}
	var req shiftRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.state.shifts[id]
	if !ok {
		s.notFound(w, r, "Shift")
		return
	}
	updated := *existing
	if err := s.applyShift(&updated, req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	*existing = updated
	s.writeJSON(w, r, http.StatusOK, existing)
}

func (s *Server) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid shift ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.shifts[id]; !ok {
		s.notFound(w, r, "Shift")
		return
	}
	delete(s.state.shifts, id)
	w.WriteHeader(http.StatusNoContent)
}

type clockRequest struct {
	EmployeeJobID int64    `json:"employeeJobId" validate:"required"`
	Time          string   `json:"time" validate:"required"`
	Notes         string   `json:"notes"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// clockIn 调用方需要持有 s.mu
func (s *Server) clockIn(employeeJobID int64, at time.Time, notes string) (*domain.Shift, int, error) {
	ej, ok := s.state.assignments[employeeJobID]
	if !ok {
		return nil, http.StatusNotFound, fmt.Errorf("Assignment %d not found", employeeJobID)
	}
	if s.state.activeShift(employeeJobID) != nil {
		return nil, http.StatusConflict, fmt.Errorf("Assignment %d is already clocked in", employeeJobID)
	}
	sh := &domain.Shift{
		ID:            s.state.id(),
		EmployeeJobID: ej.EmployeeJobID,
		EmployeeID:    ej.EmployeeID,
		EmployeeName:  ej.EmployeeName,
		JobTitle:      ej.JobTitle,
		ClockIn:       at,
		Status:        domain.ShiftStatusActive,
		Notes:         notes,
	}
	s.state.shifts[sh.ID] = sh
	return sh, http.StatusCreated, nil
}

func (s *Server) clockOut(employeeJobID int64, at time.Time, notes string) (*domain.Shift, int, error) {
	ej, ok := s.state.assignments[employeeJobID]
	if !ok {
		return nil, http.StatusNotFound, fmt.Errorf("Assignment %d not found", employeeJobID)
	}
	sh := s.state.activeShift(employeeJobID)
	if sh == nil {
		return nil, http.StatusConflict, fmt.Errorf("Assignment %d is not clocked in", employeeJobID)
	}
	if !at.After(sh.ClockIn) {
		return nil, http.StatusBadRequest, fmt.Errorf("Clock-out must be after clock-in")
	}
	sh.ClockOut = &at
	sh.Status = domain.ShiftStatusCompleted
	if notes != "" {
		sh.Notes = notes
	}
	_, sh.ShiftEarnings = earnings(sh.ClockIn, at, s.state.wage(ej))
	return sh, http.StatusOK, nil
}

func (s *Server) ClockIn(w http.ResponseWriter, r *http.Request) {
	s.clock(w, r, s.clockIn)
}

func (s *Server) ClockOut(w http.ResponseWriter, r *http.Request) {
	s.clock(w, r, s.clockOut)
}

func (s *Server) clock(w http.ResponseWriter, r *http.Request, fn func(int64, time.Time, string) (*domain.Shift, int, error)) {
	var req clockRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	at, err := time.Parse(dateTimeLocal, req.Time)
	if err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "time must be in YYYY-MM-DDTHH:MM format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh, status, err := fn(req.EmployeeJobID, at, req.Notes)
	if err != nil {
		s.errorResponse(w, r, status, err.Error())
		return
	}
	s.writeJSON(w, r, status, sh)
}

type bulkClockRequest struct {
	IDs    []int64 `json:"ids" validate:"required,min=1"`
	Time   string  `json:"time" validate:"required"`
	Notes  *string `json:"notes"`
	Reason *string `json:"reason"`
}

type bulkClockResult struct {
	Succeeded []int64           `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

func (s *Server) BulkClockIn(w http.ResponseWriter, r *http.Request) {
	s.bulkClock(w, r, s.clockIn)
}

func (s *Server) BulkClockOut(w http.ResponseWriter, r *http.Request) {
	s.bulkClock(w, r, s.clockOut)
}

// bulkClock 中每个 ID 独立处理，部分失败不影响其他 ID
func (s *Server) bulkClock(w http.ResponseWriter, r *http.Request, fn func(int64, time.Time, string) (*domain.Shift, int, error)) {
	var req bulkClockRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	at, err := time.Parse(dateTimeLocal, req.Time)
	if err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "time must be in YYYY-MM-DDTHH:MM format")
		return
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := bulkClockResult{Succeeded: []int64{}}
	for _, id := range req.IDs {
		if _, _, err := fn(id, at, notes); err != nil {
			if res.Failed == nil {
				res.Failed = make(map[string]string)
			}
			res.Failed[strconv.FormatInt(id, 10)] = err.Error()
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	s.writeJSON(w, r, http.StatusOK, res)
}
