package api

import (
	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterEmployeeRequest struct {
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	DepartmentID int64       `json:"departmentId"`
	Role         domain.Role `json:"role"`
	Password     string      `json:"password,omitempty"`
}

type DepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type JobRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	HourlyWage   decimal.Decimal `json:"hourlyWage"`
	DepartmentID int64           `json:"departmentId"`
}

type AssignJobRequest struct {
	EmployeeID int64            `json:"employeeId"`
	JobID      int64            `json:"jobId"`
	HourlyWage *decimal.Decimal `json:"hourlyWage"`
}

// WageOverrideRequest 中 HourlyWage 为 nil 表示取消覆盖，恢复岗位时薪
type WageOverrideRequest struct {
	HourlyWage *decimal.Decimal `json:"hourlyWage"`
}

// ShiftRequest 的 ClockOut 为 nil 时序列化为 null 而不是空字符串
type ShiftRequest struct {
	EmployeeJobID int64              `json:"employeeJobId"`
	ClockIn       string             `json:"clockIn"`
	ClockOut      *string            `json:"clockOut"`
	Status        domain.ShiftStatus `json:"status"`
	Notes         string             `json:"notes,omitempty"`
}

type ClockRequest struct {
	EmployeeJobID int64    `json:"employeeJobId"`
	Time          string   `json:"time"`
	Notes         string   `json:"notes,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// BulkClockRequest 的 IDs 是 employeeJobId 而不是 shift id
type BulkClockRequest struct {
	IDs    []int64 `json:"ids"`
	Time   string  `json:"time"`
	Notes  *string `json:"notes,omitempty"`
	Reason *string `json:"reason,omitempty"`
}

type BulkClockResult struct {
	Succeeded []int64           `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

type CalculatePeriodRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

type CalculatePeriodResult struct {
	PeriodNumber    int             `json:"periodNumber"`
	PaymentsCreated int             `json:"paymentsCreated"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
}

type PaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status"`
}

type ExportRequest struct {
	Format       string // pdf 或 csv
	PeriodNumber int
	Status       domain.PaymentStatus
}

type CompanyRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type CompanyRegistrationRequest struct {
	CompanyName  string `json:"companyName"`
	CompanyEmail string `json:"companyEmail"`
	AdminName    string `json:"adminName"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

type CreateInviteRequest struct {
	DepartmentID  int64 `json:"departmentId"`
	MaxUses       int   `json:"maxUses"`
	ExpiresInDays int   `json:"expiresInDays"`
}

type InviteRegistrationRequest struct {
	InviteCode string `json:"inviteCode"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Password   string `json:"password"`
}

type InviteURL struct {
	URL string `json:"url"`
}
