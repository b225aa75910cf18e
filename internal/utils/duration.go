package utils

import (
	"fmt"
	"time"

	"github.com/timetrak/client/internal/domain"
)

// FormatDuration 把时长格式化为 "2h 05m"，不足一小时时为 "45m"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// ShiftDuration 对进行中的班次使用 now 作为结束时间
func ShiftDuration(s domain.Shift, now time.Time) time.Duration {
	end := now
	if s.ClockOut != nil {
		end = *s.ClockOut
	}
	return end.Sub(s.ClockIn)
}

// FormatShiftDuration 进行中的班次后面加上 "(ongoing)"
func FormatShiftDuration(s domain.Shift, now time.Time) string {
	out := FormatDuration(ShiftDuration(s, now))
	if s.IsActive() {
		out += " (ongoing)"
	}
	return out
}

// DaysUntil 返回到 t 为止的整天数，已过期时为负数
func DaysUntil(t, now time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}
