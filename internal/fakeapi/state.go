package fakeapi

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
)

type account struct {
	user         domain.User
	passwordHash []byte
}

// state 只在持有 Server.mu 时访问
type state struct {
	nextID int64

	company  domain.Company
	accounts map[string]*account
	// 刷新令牌 -> 用户名
	refreshTokens map[string]string

	employees   map[int64]*domain.Employee
	departments map[int64]*domain.Department
	jobs        map[int64]*domain.Job
	assignments map[int64]*domain.EmployeeJob
	shifts      map[int64]*domain.Shift
	payments    map[int64]*domain.Payment
	invites     map[string]*domain.Invite
}

func newState() *state {
	return &state{
		nextID:        1,
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]string),
		employees:     make(map[int64]*domain.Employee),
		departments:   make(map[int64]*domain.Department),
		jobs:          make(map[int64]*domain.Job),
		assignments:   make(map[int64]*domain.EmployeeJob),
		shifts:        make(map[int64]*domain.Shift),
		payments:      make(map[int64]*domain.Payment),
		invites:       make(map[string]*domain.Invite),
	}
}

func (st *state) id() int64 {
	id := st.nextID
	st.nextID++
	return id
}

func (st *state) addAccount(u domain.User, hash []byte) *account {
	u.ID = st.id()
	a := &account{user: u, passwordHash: hash}
	st.accounts[u.Username] = a
	return a
}

func (st *state) usernameTaken(username string) bool {
	if _, ok := st.accounts[username]; ok {
		return true
	}
	for _, e := range st.employees {
		if e.Username == username {
			return true
		}
	}
	return false
}

// sorted 按 ID 升序返回值的副本
func sorted[T any](m map[int64]*T) []T {
	out := make([]T, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, *m[k])
	}
	return out
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (st *state) employeeList() []domain.Employee {
	return filter(sorted(st.employees), func(e domain.Employee) bool {
		return e.Status != domain.EmployeeStatusDeleted
	})
}

func (st *state) department(id int64) (domain.Department, bool) {
	d, ok := st.departments[id]
	if !ok {
		return domain.Department{}, false
	}
	out := *d
	for _, e := range st.employees {
		if e.DepartmentID == id && e.Status != domain.EmployeeStatusDeleted {
			out.EmployeeCount++
		}
	}
	for _, j := range st.jobs {
		if j.DepartmentID == id {
			out.JobCount++
		}
	}
	return out, true
}

func (st *state) departmentList() []domain.Department {
	out := make([]domain.Department, 0, len(st.departments))
	for _, k := range slices.Sorted(maps.Keys(st.departments)) {
		d, _ := st.department(k)
		out = append(out, d)
	}
	return out
}

// shiftDepartment 通过分配关系找到班次所属员工的部门
func (st *state) shiftDepartment(sh domain.Shift) int64 {
	if e, ok := st.employees[sh.EmployeeID]; ok {
		return e.DepartmentID
	}
	return 0
}

func (st *state) activeShift(employeeJobID int64) *domain.Shift {
	for _, sh := range st.shifts {
		if sh.EmployeeJobID == employeeJobID && sh.Status == domain.ShiftStatusActive {
			return sh
		}
	}
	return nil
}

func (st *state) wage(ej *domain.EmployeeJob) decimal.Decimal {
	job, ok := st.jobs[ej.JobID]
	if !ok {
		if ej.HourlyWage != nil {
			return *ej.HourlyWage
		}
		return decimal.Zero
	}
	return ej.EffectiveWage(*job)
}

// earnings 按分钟计算工时，金额保留两位小数
func earnings(clockIn, clockOut time.Time, wage decimal.Decimal) (hours, amount decimal.Decimal) {
	minutes := int64(clockOut.Sub(clockIn) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	hours = decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))
	return hours.Round(2), hours.Mul(wage).Round(2)
}

func byClockIn(a, b domain.Shift) int {
	if c := a.ClockIn.Compare(b.ClockIn); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
