package store

import "github.com/timetrak/client/internal/query"

// 写操作名称
const (
	MutRegisterEmployee   = "register-employee"
	MutApproveEmployee    = "approve-employee"
	MutRejectEmployee     = "reject-employee"
	MutActivateEmployee   = "activate-employee"
	MutDeactivateEmployee = "deactivate-employee"
	MutDeleteEmployee     = "delete-employee"
	MutCreateDepartment   = "create-department"
	MutUpdateDepartment   = "update-department"
	MutDeleteDepartment   = "delete-department"
	MutCreateJob          = "create-job"
	MutUpdateJob          = "update-job"
	MutDeleteJob          = "delete-job"
	MutAssignJob          = "assign-job"
	MutUnassignJob        = "unassign-job"
	MutUpdateWageOverride = "update-wage-override"
	MutCreateShift        = "create-shift"
	MutUpdateShift        = "update-shift"
	MutDeleteShift        = "delete-shift"
	MutClockIn            = "clock-in"
	MutClockOut           = "clock-out"
	MutBulkClockIn        = "bulk-clock-in"
	MutBulkClockOut       = "bulk-clock-out"
	MutCalculatePayments  = "calculate-payments"
	MutUpdatePayment      = "update-payment-status"
	MutUpdateCompany      = "update-company"
	MutCreateInvite       = "create-invite"
	MutDeactivateInvite   = "deactivate-invite"
	MutRegisterByInvite   = "register-by-invite"
)

// Invalidations 是每个写操作成功后需要失效的资源族。失效按族整体进行，不精确到行：
// 多出来的重新请求是浪费而不是错误，因为重新请求总是反映服务端的当前状态
var Invalidations = map[string][]query.Key{
	MutRegisterEmployee:   families(FamilyEmployees, FamilyEmployeeCounts, FamilyDepartments),
	MutApproveEmployee:    families(FamilyEmployees, FamilyEmployeeCounts, FamilyEmployee),
	MutRejectEmployee:     families(FamilyEmployees, FamilyEmployeeCounts, FamilyEmployee),
	MutActivateEmployee:   families(FamilyEmployees, FamilyEmployeeCounts, FamilyEmployee),
	MutDeactivateEmployee: families(FamilyEmployees, FamilyEmployeeCounts, FamilyEmployee),
	MutDeleteEmployee:     families(FamilyEmployees, FamilyEmployeeCounts, FamilyEmployee, FamilyDepartments),
	MutCreateDepartment:   families(FamilyDepartments),
	MutUpdateDepartment:   families(FamilyDepartments),
	MutDeleteDepartment:   families(FamilyDepartments, FamilyEmployees, FamilyJobs),
	MutCreateJob:          families(FamilyJobs, FamilyDepartments),
	MutUpdateJob:          families(FamilyJobs, FamilyEmployeeJobs),
	MutDeleteJob:          families(FamilyJobs, FamilyDepartments, FamilyEmployeeJobs),
	MutAssignJob:          families(FamilyEmployeeJobs),
	MutUnassignJob:        families(FamilyEmployeeJobs, FamilyShifts),
	MutUpdateWageOverride: families(FamilyEmployeeJobs),
	MutCreateShift:        families(FamilyShifts),
	MutUpdateShift:        families(FamilyShifts),
	MutDeleteShift:        families(FamilyShifts),
	MutClockIn:            families(FamilyShifts),
	MutClockOut:           families(FamilyShifts),
	MutBulkClockIn:        families(FamilyShifts),
	MutBulkClockOut:       families(FamilyShifts),
	MutCalculatePayments:  families(FamilyPayments),
	MutUpdatePayment:      families(FamilyPayments),
	MutUpdateCompany:      families(FamilyCompany),
	MutCreateInvite:       families(FamilyInvites),
	MutDeactivateInvite:   families(FamilyInvites),
	MutRegisterByInvite:   families(FamilyEmployees, FamilyEmployeeCounts, FamilyInvites),
}

func families(names ...string) []query.Key {
	keys := make([]query.Key, len(names))
	for i, name := range names {
		keys[i] = Family(name)
	}
	return keys
}
