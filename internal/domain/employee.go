package domain

type EmployeeStatus string

const (
	EmployeeStatusPending     EmployeeStatus = "PENDING"
	EmployeeStatusActive      EmployeeStatus = "ACTIVE"
	EmployeeStatusDeactivated EmployeeStatus = "DEACTIVATED"
	EmployeeStatusRejected    EmployeeStatus = "REJECTED"
	EmployeeStatusDeleted     EmployeeStatus = "DELETED"
)

// EmployeeStatuses 是员工列表页上除 ALL 以外的标签页顺序
var EmployeeStatuses = []EmployeeStatus{
	EmployeeStatusPending,
	EmployeeStatusActive,
	EmployeeStatusDeactivated,
	EmployeeStatusRejected,
}

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

type Employee struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	Status         EmployeeStatus `json:"status"`
	DepartmentID   int64          `json:"departmentId"`
	DepartmentName string         `json:"departmentName,omitempty"`
	Role           Role           `json:"role"`
}

// EmployeeCounts 是仪表盘徽标使用的各状态员工数量
type EmployeeCounts struct {
	All         int64 `json:"all"`
	Pending     int64 `json:"pending"`
	Active      int64 `json:"active"`
	Deactivated int64 `json:"deactivated"`
	Rejected    int64 `json:"rejected"`
}

type Department struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	EmployeeCount int64  `json:"employeeCount"`
	JobCount      int64  `json:"jobCount"`
}

type Company struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}
