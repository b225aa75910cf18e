package view

import "errors"

var ErrPickerDisabled = errors.New("select a department first")

// EmployeePicker 是部门 -> 员工的级联下拉框：未选部门时员工下拉框不可用，
// 切换部门会清空已选员工
type EmployeePicker struct {
	DepartmentID int64
	EmployeeID   int64
}

func (p EmployeePicker) Enabled() bool {
	return p.DepartmentID > 0
}

func (p EmployeePicker) SelectDepartment(departmentID int64) EmployeePicker {
	return EmployeePicker{DepartmentID: max(departmentID, 0)}
}

func (p EmployeePicker) SelectEmployee(employeeID int64) (EmployeePicker, error) {
	if !p.Enabled() {
		return p, ErrPickerDisabled
	}
	p.EmployeeID = employeeID
	return p, nil
}
