// Package view 保存列表页的筛选状态。所有转换都是纯函数，返回新的完整状态
package view

import (
	"strings"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/query"
)

const (
	TabAll          = "ALL"
	DefaultPageSize = 10
)

// Policy 描述各列表页在转换上的差异
type Policy struct {
	// ClearSearchOnTab 为 true 时切换标签页会清空搜索词（员工页），班次页保留搜索词
	ClearSearchOnTab bool
}

var (
	EmployeesPolicy = Policy{ClearSearchOnTab: true}
	ShiftsPolicy    = Policy{}
	PaymentsPolicy  = Policy{}
	JobsPolicy      = Policy{}
)

type ListState struct {
	Policy       Policy
	Tab          string
	Search       string
	DepartmentID int64
	EmployeeID   int64
	Period       *domain.PaymentPeriod
	Page         int
	Size         int
}

func NewListState(policy Policy) ListState {
	return ListState{Policy: policy, Tab: TabAll, Size: DefaultPageSize}
}

// WithTab 切换标签页并回到第一页
func (s ListState) WithTab(tab string) ListState {
	if tab == "" {
		tab = TabAll
	}
	s.Tab = strings.ToUpper(tab)
	if s.Policy.ClearSearchOnTab {
		s.Search = ""
	}
	s.Page = 0
	return s
}

// WithSearch 对应提交搜索，标签页不变
func (s ListState) WithSearch(query string) ListState {
	s.Search = strings.TrimSpace(query)
	s.Page = 0
	return s
}

func (s ListState) WithDepartment(departmentID int64) ListState {
	s.DepartmentID = max(departmentID, 0)
	s.Page = 0
	return s
}

func (s ListState) WithEmployee(employeeID int64) ListState {
	s.EmployeeID = max(employeeID, 0)
	s.Page = 0
	return s
}

// WithPeriod 在已获取的周期列表中按 (periodStart, periodEnd) 的值查找周期，
// 页面重新加载后对象引用不同，只能按值重新定位。找不到时状态不变并返回 false
func (s ListState) WithPeriod(periods []domain.PaymentPeriod, start, end string) (ListState, bool) {
	for _, p := range periods {
		if p.SameRange(start, end) {
			selected := p
			s.Period = &selected
			s.Page = 0
			return s, true
		}
	}
	return s, false
}

func (s ListState) WithoutPeriod() ListState {
	s.Period = nil
	s.Page = 0
	return s
}

// WithPage 只改变页码，其余维度保持不变
func (s ListState) WithPage(page int) ListState {
	s.Page = max(page, 0)
	return s
}

// ClampPage 在结果集变短后把页码拉回到最后一页
func (s ListState) ClampPage(totalPages int) ListState {
	if totalPages <= 0 {
		s.Page = 0
		return s
	}
	if s.Page > totalPages-1 {
		s.Page = totalPages - 1
	}
	return s
}

func (s ListState) PageSize() int {
	if s.Size <= 0 {
		return DefaultPageSize
	}
	return s.Size
}

func (s ListState) PeriodRange() (start, end string) {
	if s.Period == nil {
		return "", ""
	}
	return s.Period.PeriodStart, s.Period.PeriodEnd
}

// Dims 是构成缓存 Key 的全部筛选维度，顺序固定
func (s ListState) Dims() []any {
	start, end := s.PeriodRange()
	return []any{s.Tab, s.Search, s.DepartmentID, s.EmployeeID, start, end, s.Page, s.PageSize()}
}

func (s ListState) Key(family string) query.Key {
	return query.NewKey(family, s.Dims()...)
}

// Equal 比较两个状态的筛选维度
func (s ListState) Equal(other ListState) bool {
	a, b := s.Dims(), other.Dims()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
