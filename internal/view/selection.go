package view

import (
	"slices"

	"github.com/timetrak/client/internal/domain"
)

// Selection 是批量打卡的选择集合。元素是 employeeJobId 而不是 shift id：
// 批量打卡的对象是岗位分配，同一分配下的两个班次在集合中无法区分
type Selection struct {
	ids map[int64]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

func (s *Selection) Toggle(shift domain.Shift) bool {
	if _, ok := s.ids[shift.EmployeeJobID]; ok {
		delete(s.ids, shift.EmployeeJobID)
		return false
	}
	s.ids[shift.EmployeeJobID] = struct{}{}
	return true
}

func (s *Selection) Contains(shift domain.Shift) bool {
	_, ok := s.ids[shift.EmployeeJobID]
	return ok
}

// AllSelected 判断 shifts 中的每一项是否都已选中
func (s *Selection) AllSelected(shifts []domain.Shift) bool {
	if len(shifts) == 0 {
		return false
	}
	for _, shift := range shifts {
		if !s.Contains(shift) {
			return false
		}
	}
	return true
}

// ToggleAll 对应“全选”复选框：已全选时清空，否则选中全部
func (s *Selection) ToggleAll(shifts []domain.Shift) {
	if s.AllSelected(shifts) {
		for _, shift := range shifts {
			delete(s.ids, shift.EmployeeJobID)
		}
		return
	}
	for _, shift := range shifts {
		s.ids[shift.EmployeeJobID] = struct{}{}
	}
}

func (s *Selection) Clear() {
	clear(s.ids)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs 按升序返回选中的 employeeJobId
func (s *Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
