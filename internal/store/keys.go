package store

import (
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/view"
)

// 资源族，Key 的第一个元素
const (
	FamilyEmployees      = "employees"
	FamilyEmployee       = "employee"
	FamilyEmployeeCounts = "employee-counts"
	FamilyDepartments    = "departments"
	FamilyJobs           = "jobs"
	FamilyEmployeeJobs   = "employee-jobs"
	FamilyShifts         = "shifts"
	FamilyPayments       = "payments"
	FamilyPeriods        = "periods"
	FamilyInvites        = "invites"
	FamilyCompany        = "company"
)

func Family(name string) query.Key {
	return query.NewKey(name)
}

func EmployeesKey(st view.ListState) query.Key {
	return st.Key(FamilyEmployees)
}

func DepartmentEmployeesKey(departmentID int64) query.Key {
	return query.NewKey(FamilyEmployees, "by-department", departmentID)
}

func EmployeeKey(employeeID int64) query.Key {
	return query.NewKey(FamilyEmployee, employeeID)
}

func EmployeeCountsKey() query.Key {
	return query.NewKey(FamilyEmployeeCounts)
}

func DepartmentsKey(page, size int) query.Key {
	return query.NewKey(FamilyDepartments, page, size)
}

func DepartmentKey(departmentID int64) query.Key {
	return query.NewKey(FamilyDepartments, "detail", departmentID)
}

func JobsKey(st view.ListState) query.Key {
	return st.Key(FamilyJobs)
}

func EmployeeJobsKey(employeeID int64) query.Key {
	return query.NewKey(FamilyEmployeeJobs, employeeID)
}

func ShiftsKey(st view.ListState) query.Key {
	return st.Key(FamilyShifts)
}

func ActiveShiftsKey(size int) query.Key {
	return query.NewKey(FamilyShifts, "active", size)
}

func PaymentsKey(st view.ListState) query.Key {
	return st.Key(FamilyPayments)
}

func RecentPaymentsKey(size int) query.Key {
	return query.NewKey(FamilyPayments, "recent", size)
}

func PeriodsKey(which string) query.Key {
	return query.NewKey(FamilyPeriods, which)
}

func InvitesKey(page, size int) query.Key {
	return query.NewKey(FamilyInvites, page, size)
}

func ActiveInvitesKey() query.Key {
	return query.NewKey(FamilyInvites, "active")
}

func CompanyKey() query.Key {
	return query.NewKey(FamilyCompany)
}
