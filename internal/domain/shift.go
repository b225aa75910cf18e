package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftStatusActive    ShiftStatus = "ACTIVE"
	ShiftStatusCompleted ShiftStatus = "COMPLETED"
	ShiftStatusCancelled ShiftStatus = "CANCELLED"
)

var ShiftStatuses = []ShiftStatus{
	ShiftStatusActive,
	ShiftStatusCompleted,
	ShiftStatusCancelled,
}

// Shift 中 ClockOut 为空当且仅当 Status 为 ACTIVE
type Shift struct {
	ID            int64           `json:"id"`
	EmployeeJobID int64           `json:"employeeJobId"`
	EmployeeID    int64           `json:"employeeId,omitempty"`
	EmployeeName  string          `json:"employeeName,omitempty"`
	JobTitle      string          `json:"jobTitle,omitempty"`
	ClockIn       time.Time       `json:"clockIn"`
	ClockOut      *time.Time      `json:"clockOut"`
	Status        ShiftStatus     `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	ShiftEarnings decimal.Decimal `json:"shiftEarnings"`
}

func (s Shift) IsActive() bool {
	return s.ClockOut == nil
}
