package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
)

type LoginForm struct {
	Username string `label:"Username" validate:"required"`
	Password string `label:"Password" validate:"required"`
}

func (f LoginForm) Request() api.LoginRequest {
	return api.LoginRequest{Username: strings.TrimSpace(f.Username), Password: f.Password}
}

// ShiftForm 用于新建和编辑班次，时间是 datetime-local 格式的字符串
type ShiftForm struct {
	EmployeeJobID int64  `label:"Assignment" validate:"required"`
	ClockIn       string `label:"Clock-in" validate:"required,datetimelocal"`
	ClockOut      string `label:"Clock-out" validate:"omitempty,datetimelocal"`
	Notes         string `label:"Notes" validate:"max=500"`
}

func (f ShiftForm) Messages() map[string]string {
	return map[string]string{
		"EmployeeJobID.required": "Please select an employee and job",
	}
}

// Request 根据是否填写了下班时间决定状态：填写为 COMPLETED，否则为 ACTIVE 且 clockOut 为 null
func (f ShiftForm) Request() api.ShiftRequest {
	req := api.ShiftRequest{
		EmployeeJobID: f.EmployeeJobID,
		ClockIn:       f.ClockIn,
		Status:        domain.ShiftStatusActive,
		Notes:         strings.TrimSpace(f.Notes),
	}
	if out := strings.TrimSpace(f.ClockOut); out != "" {
		req.ClockOut = &out
		req.Status = domain.ShiftStatusCompleted
	}
	return req
}

func clockOutAfterClockIn(sl validator.StructLevel) {
	f := sl.Current().Interface().(ShiftForm)
	if strings.TrimSpace(f.ClockOut) == "" {
		return
	}
	in, err := time.Parse(DateTimeLocal, f.ClockIn)
	if err != nil {
		return
	}
	out, err := time.Parse(DateTimeLocal, f.ClockOut)
	if err != nil {
		return
	}
	if !out.After(in) {
		sl.ReportError(f.ClockOut, "Clock-out", "ClockOut", "afterclockin", "")
	}
}

type ClockForm struct {
	EmployeeJobID int64    `label:"Assignment" validate:"required"`
	Time          string   `label:"Time" validate:"required,datetimelocal"`
	Notes         string   `label:"Notes" validate:"max=500"`
	Latitude      *float64 `label:"Latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `label:"Longitude" validate:"omitempty,longitude"`
}

func (f ClockForm) Request() api.ClockRequest {
	return api.ClockRequest{
		EmployeeJobID: f.EmployeeJobID,
		Time:          f.Time,
		Notes:         strings.TrimSpace(f.Notes),
		Latitude:      f.Latitude,
		Longitude:     f.Longitude,
	}
}

// BulkClockForm 的 IDs 来自 view.Selection，是 employeeJobId
type BulkClockForm struct {
	IDs    []int64 `label:"Selection" validate:"required,min=1,dive,gt=0"`
	Time   string  `label:"Time" validate:"required,datetimelocal"`
	Notes  string  `label:"Notes" validate:"max=500"`
	Reason string  `label:"Reason" validate:"max=255"`
}

func (f BulkClockForm) Messages() map[string]string {
	return map[string]string{
		"IDs.required": "Please select at least one shift",
		"IDs.min":      "Please select at least one shift",
	}
}

// Request 中空的备注和原因不出现在请求体里
func (f BulkClockForm) Request() api.BulkClockRequest {
	return api.BulkClockRequest{
		IDs:    f.IDs,
		Time:   f.Time,
		Notes:  optional(f.Notes),
		Reason: optional(f.Reason),
	}
}

// ShareInviteForm 是通过邮件分享邀请码时填写的收件人和附言
type ShareInviteForm struct {
	To      string `label:"Recipient" validate:"required,email"`
	Message string `label:"Message" validate:"max=1000"`
}

func (f ShareInviteForm) Messages() map[string]string {
	return map[string]string{
		"To.required": "Please enter a recipient",
		"To.email":    "Please enter a valid e-mail address",
	}
}

// InviteForm 的部门来自下拉框，未选择时为空字符串
type InviteForm struct {
	DepartmentID  string `label:"Department" validate:"required,number"`
	SingleUse     bool   `label:"Single use"`
	MaxUses       int    `label:"Max uses" validate:"omitempty,min=1,max=1000"`
	ExpiresInDays int    `label:"Expires in (days)" validate:"required,min=1,max=365"`
}

func (f InviteForm) Messages() map[string]string {
	return map[string]string{
		"DepartmentID.required": "Please select a department",
		"DepartmentID.number":   "Please select a department",
	}
}

func (f InviteForm) Request() (api.CreateInviteRequest, error) {
	departmentID, err := strconv.ParseInt(f.DepartmentID, 10, 64)
	if err != nil {
		return api.CreateInviteRequest{}, err
	}
	maxUses := f.MaxUses
	if f.SingleUse || maxUses == 0 {
		maxUses = 1
	}
	return api.CreateInviteRequest{
		DepartmentID:  departmentID,
		MaxUses:       maxUses,
		ExpiresInDays: f.ExpiresInDays,
	}, nil
}

type InviteRegistrationForm struct {
	InviteCode      string `label:"Invite code" validate:"required,invitecode"`
	Name            string `label:"Full name" validate:"required,max=100"`
	Username        string `label:"Username" validate:"required,username"`
	Email           string `label:"Email" validate:"required,email"`
	Phone           string `label:"Phone" validate:"omitempty,phone"`
	Password        string `label:"Password" validate:"required,min=8,max=72"`
	ConfirmPassword string `label:"Confirm password" validate:"required,eqfield=Password"`
}

func (f InviteRegistrationForm) Messages() map[string]string {
	return map[string]string{
		"ConfirmPassword.eqfield": "Passwords do not match",
	}
}

func (f InviteRegistrationForm) Request() api.InviteRegistrationRequest {
	return api.InviteRegistrationRequest{
		InviteCode: strings.TrimSpace(f.InviteCode),
		Name:       strings.TrimSpace(f.Name),
		Username:   strings.TrimSpace(f.Username),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Password:   f.Password,
	}
}

type EmployeeRegistrationForm struct {
	Name         string `label:"Full name" validate:"required,max=100"`
	Username     string `label:"Username" validate:"required,username"`
	Email        string `label:"Email" validate:"required,email"`
	Phone        string `label:"Phone" validate:"omitempty,phone"`
	DepartmentID int64  `label:"Department" validate:"required"`
	Role         string `label:"Role" validate:"required,oneof=ADMIN EMPLOYEE"`
	Password     string `label:"Password" validate:"omitempty,min=8,max=72"`
}

func (f EmployeeRegistrationForm) Messages() map[string]string {
	return map[string]string{
		"DepartmentID.required": "Please select a department",
	}
}

func (f EmployeeRegistrationForm) Request() api.RegisterEmployeeRequest {
	return api.RegisterEmployeeRequest{
		Name:         strings.TrimSpace(f.Name),
		Username:     strings.TrimSpace(f.Username),
		Email:        strings.TrimSpace(f.Email),
		Phone:        strings.TrimSpace(f.Phone),
		DepartmentID: f.DepartmentID,
		Role:         domain.Role(f.Role),
		Password:     f.Password,
	}
}

type DepartmentForm struct {
	Name        string `label:"Name" validate:"required,max=100"`
	Description string `label:"Description" validate:"max=500"`
}

func (f DepartmentForm) Request() api.DepartmentRequest {
	return api.DepartmentRequest{Name: strings.TrimSpace(f.Name), Description: strings.TrimSpace(f.Description)}
}

type JobForm struct {
	Title        string          `label:"Title" validate:"required,max=100"`
	Description  string          `label:"Description" validate:"max=500"`
	HourlyWage   decimal.Decimal `label:"Hourly wage" validate:"required,gt=0,lte=10000"`
	DepartmentID int64           `label:"Department" validate:"required"`
}

func (f JobForm) Messages() map[string]string {
	return map[string]string{
		"DepartmentID.required": "Please select a department",
	}
}

func (f JobForm) Request() api.JobRequest {
	return api.JobRequest{
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		HourlyWage:   f.HourlyWage.Round(2),
		DepartmentID: f.DepartmentID,
	}
}

// WageOverrideForm 的 HourlyWage 为 nil 表示恢复岗位时薪
type WageOverrideForm struct {
	HourlyWage *decimal.Decimal `label:"Hourly wage" validate:"omitempty,gt=0,lte=10000"`
}

func (f WageOverrideForm) Request() api.WageOverrideRequest {
	if f.HourlyWage == nil {
		return api.WageOverrideRequest{}
	}
	wage := f.HourlyWage.Round(2)
	return api.WageOverrideRequest{HourlyWage: &wage}
}

type CompanyForm struct {
	Name    string `label:"Company name" validate:"required,max=100"`
	Email   string `label:"Email" validate:"required,email"`
	Phone   string `label:"Phone" validate:"omitempty,phone"`
	Address string `label:"Address" validate:"max=255"`
}

func (f CompanyForm) Request() api.CompanyRequest {
	return api.CompanyRequest{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Address: strings.TrimSpace(f.Address),
	}
}

type CompanyRegistrationForm struct {
	CompanyName     string `label:"Company name" validate:"required,max=100"`
	CompanyEmail    string `label:"Company email" validate:"required,email"`
	AdminName       string `label:"Administrator name" validate:"required,max=100"`
	Username        string `label:"Username" validate:"required,username"`
	Email           string `label:"Email" validate:"required,email"`
	Password        string `label:"Password" validate:"required,min=8,max=72"`
	ConfirmPassword string `label:"Confirm password" validate:"required,eqfield=Password"`
}

func (f CompanyRegistrationForm) Messages() map[string]string {
	return map[string]string{
		"ConfirmPassword.eqfield": "Passwords do not match",
	}
}

func (f CompanyRegistrationForm) Request() api.CompanyRegistrationRequest {
	return api.CompanyRegistrationRequest{
		CompanyName:  strings.TrimSpace(f.CompanyName),
		CompanyEmail: strings.TrimSpace(f.CompanyEmail),
		AdminName:    strings.TrimSpace(f.AdminName),
		Username:     strings.TrimSpace(f.Username),
		Email:        strings.TrimSpace(f.Email),
		Password:     f.Password,
	}
}

type PaymentStatusForm struct {
	Status string `label:"Status" validate:"required,oneof=CALCULATED ISSUED COMPLETED VOIDED"`
}

func (f PaymentStatusForm) Request() api.PaymentStatusRequest {
	return api.PaymentStatusRequest{Status: domain.PaymentStatus(f.Status)}
}

type ExportForm struct {
	Format       string `label:"Format" validate:"required,oneof=pdf csv"`
	PeriodNumber int    `label:"Period" validate:"min=0"`
	Status       string `label:"Status" validate:"omitempty,oneof=CALCULATED ISSUED COMPLETED VOIDED"`
}

func (f ExportForm) Request() api.ExportRequest {
	return api.ExportRequest{
		Format:       f.Format,
		PeriodNumber: f.PeriodNumber,
		Status:       domain.PaymentStatus(f.Status),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
