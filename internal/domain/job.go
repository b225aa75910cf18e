package domain

import "github.com/shopspring/decimal"

type Job struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	HourlyWage   decimal.Decimal `json:"hourlyWage"`
	DepartmentID int64           `json:"departmentId"`
}

// EmployeeJob 是员工与岗位的分配关系，时薪覆盖只作用于这一条分配
type EmployeeJob struct {
	EmployeeJobID int64            `json:"employeeJobId"`
	EmployeeID    int64            `json:"employeeId"`
	EmployeeName  string           `json:"employeeName,omitempty"`
	JobID         int64            `json:"jobId"`
	JobTitle      string           `json:"jobTitle,omitempty"`
	HourlyWage    *decimal.Decimal `json:"hourlyWage"`
}

// EffectiveWage 返回分配上的覆盖时薪，没有覆盖时返回岗位时薪
func (ej EmployeeJob) EffectiveWage(job Job) decimal.Decimal {
	if ej.HourlyWage != nil {
		return *ej.HourlyWage
	}
	return job.HourlyWage
}
