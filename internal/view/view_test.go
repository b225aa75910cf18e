package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/view"
)

func TestListState_TransitionsResetPage(t *testing.T) {
	base := view.NewListState(view.ShiftsPolicy).WithPage(3)

	tests := []struct {
		name string
		next view.ListState
	}{
		{"tab", base.WithTab("active")},
		{"search", base.WithSearch("ann")},
		{"department", base.WithDepartment(2)},
		{"employee", base.WithEmployee(7)},
		{"clear period", base.WithoutPeriod()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, tt.next.Page)
			assert.Equal(t, 3, base.Page, "transition must not mutate the original")
		})
	}
}

func TestListState_Idempotent(t *testing.T) {
	s := view.NewListState(view.EmployeesPolicy).WithPage(2)

	once := s.WithTab("PENDING")
	twice := once.WithTab("PENDING")
	assert.True(t, once.Equal(twice))

	once = s.WithSearch(" bob ")
	assert.Equal(t, "bob", once.Search)
	assert.True(t, once.Equal(once.WithSearch("bob")))
}

func TestListState_WithPageKeepsOtherDims(t *testing.T) {
	s := view.NewListState(view.ShiftsPolicy).
		WithTab("COMPLETED").
		WithSearch("ann").
		WithDepartment(4)

	next := s.WithPage(5)
	assert.Equal(t, 5, next.Page)
	assert.Equal(t, "COMPLETED", next.Tab)
	assert.Equal(t, "ann", next.Search)
	assert.Equal(t, int64(4), next.DepartmentID)

	assert.Equal(t, 0, s.WithPage(-1).Page)
}

func TestListState_TabClearsSearchPerPolicy(t *testing.T) {
	employees := view.NewListState(view.EmployeesPolicy).WithSearch("ann").WithTab("ACTIVE")
	assert.Empty(t, employees.Search)

	shifts := view.NewListState(view.ShiftsPolicy).WithSearch("ann").WithTab("ACTIVE")
	assert.Equal(t, "ann", shifts.Search)

	assert.Equal(t, view.TabAll, shifts.WithTab("").Tab)
}

func TestListState_WithPeriodByValue(t *testing.T) {
	periods := []domain.PaymentPeriod{
		{PeriodNumber: 1, PeriodStart: "2024-01-01", PeriodEnd: "2024-01-14"},
		{PeriodNumber: 2, PeriodStart: "2024-01-15", PeriodEnd: "2024-01-28"},
	}
	s := view.NewListState(view.PaymentsPolicy).WithPage(4)

	// 重新获取后的列表是新的切片，只能按值匹配
	refetched := append([]domain.PaymentPeriod(nil), periods...)
	next, ok := s.WithPeriod(refetched, "2024-01-15", "2024-01-28")
	require.True(t, ok)
	require.NotNil(t, next.Period)
	assert.Equal(t, 2, next.Period.PeriodNumber)
	assert.Equal(t, 0, next.Page)

	start, end := next.PeriodRange()
	assert.Equal(t, "2024-01-15", start)
	assert.Equal(t, "2024-01-28", end)

	same, ok := s.WithPeriod(periods, "2024-02-01", "2024-02-14")
	assert.False(t, ok)
	assert.True(t, same.Equal(s))
	assert.Equal(t, 4, same.Page)
}

func TestListState_KeyChangesWithDims(t *testing.T) {
	s := view.NewListState(view.ShiftsPolicy)
	assert.Equal(t, s.Key("shifts"), s.WithPage(0).Key("shifts"))
	assert.NotEqual(t, s.Key("shifts"), s.WithPage(1).Key("shifts"))
	assert.NotEqual(t, s.Key("shifts"), s.WithDepartment(1).Key("shifts"))
	assert.NotEqual(t, s.Key("shifts"), s.Key("payments"))
}

func TestListState_ClampPage(t *testing.T) {
	s := view.NewListState(view.JobsPolicy).WithPage(6)
	assert.Equal(t, 2, s.ClampPage(3).Page)
	assert.Equal(t, 0, s.ClampPage(0).Page)
	assert.Equal(t, 6, s.ClampPage(10).Page)
}

func TestEmployeePicker(t *testing.T) {
	var p view.EmployeePicker
	assert.False(t, p.Enabled())

	_, err := p.SelectEmployee(3)
	assert.ErrorIs(t, err, view.ErrPickerDisabled)

	p = p.SelectDepartment(2)
	require.True(t, p.Enabled())
	p, err = p.SelectEmployee(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.EmployeeID)

	// 切换部门清空员工
	p = p.SelectDepartment(5)
	assert.Equal(t, int64(5), p.DepartmentID)
	assert.Zero(t, p.EmployeeID)
}

func TestSelection_KeyedByAssignment(t *testing.T) {
	shifts := []domain.Shift{
		{ID: 1, EmployeeJobID: 9},
		{ID: 2, EmployeeJobID: 5},
		{ID: 3, EmployeeJobID: 9},
	}
	sel := view.NewSelection()

	assert.True(t, sel.Toggle(shifts[0]))
	// 同一岗位分配的另一个班次视为已选中
	assert.True(t, sel.Contains(shifts[2]))
	assert.False(t, sel.AllSelected(shifts))

	sel.ToggleAll(shifts)
	assert.True(t, sel.AllSelected(shifts))
	assert.Equal(t, []int64{5, 9}, sel.IDs())
	assert.Equal(t, 2, sel.Len())

	sel.ToggleAll(shifts)
	assert.Zero(t, sel.Len())
	assert.Empty(t, sel.IDs())

	assert.False(t, sel.AllSelected(nil))
}

func TestPager(t *testing.T) {
	tests := []struct {
		name     string
		pager    view.Pager
		width    int
		from, to int
	}{
		{"empty", view.Pager{}, 5, 0, 0},
		{"fewer pages than width", view.Pager{Page: 1, TotalPages: 3}, 5, 0, 3},
		{"start", view.Pager{Page: 0, TotalPages: 20}, 5, 0, 5},
		{"middle", view.Pager{Page: 10, TotalPages: 20}, 5, 8, 13},
		{"end", view.Pager{Page: 19, TotalPages: 20}, 5, 15, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.pager.Window(tt.width)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}

	p := view.PagerOf(domain.Page[int]{Content: []int{1}, Number: 1, TotalPages: 3, TotalElements: 21})
	assert.Equal(t, "Page 2 of 3 (21 total)", p.Label())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, "No results", view.Pager{}.Label())
}
