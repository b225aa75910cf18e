package domain

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentStatusCalculated PaymentStatus = "CALCULATED"
	PaymentStatusIssued     PaymentStatus = "ISSUED"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusVoided     PaymentStatus = "VOIDED"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusCalculated,
	PaymentStatusIssued,
	PaymentStatusCompleted,
	PaymentStatusVoided,
}

type Payment struct {
	ID            int64           `json:"id"`
	EmployeeID    int64           `json:"employeeId"`
	EmployeeName  string          `json:"employeeName,omitempty"`
	PeriodNumber  int             `json:"periodNumber"`
	PeriodStart   string          `json:"periodStart,omitempty"`
	PeriodEnd     string          `json:"periodEnd,omitempty"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalHours    decimal.Decimal `json:"totalHours"`
	Status        PaymentStatus   `json:"status"`
}

// PaymentPeriod 由服务端枚举，客户端不计算周期边界；日期格式为 2006-01-02
type PaymentPeriod struct {
	PeriodNumber int    `json:"periodNumber"`
	PeriodStart  string `json:"periodStart"`
	PeriodEnd    string `json:"periodEnd"`
	DisplayLabel string `json:"displayLabel"`
}

// SameRange 按 (periodStart, periodEnd) 的值判断是否为同一周期
func (p PaymentPeriod) SameRange(start, end string) bool {
	return p.PeriodStart == start && p.PeriodEnd == end
}
