package domain

import "time"

type Invite struct {
	InviteCode     string    `json:"inviteCode"`
	DepartmentID   int64     `json:"departmentId"`
	DepartmentName string    `json:"departmentName,omitempty"`
	MaxUses        int       `json:"maxUses"`
	CurrentUses    int       `json:"currentUses"`
	ExpiresAt      time.Time `json:"expiresAt"`
	IsActive       bool      `json:"isActive"`
}

func (i Invite) IsSingleUse() bool {
	return i.MaxUses == 1
}

func (i Invite) RemainingUses() int {
	return max(i.MaxUses-i.CurrentUses, 0)
}

// Usable 判断邀请码在 now 时刻是否还能用于注册
func (i Invite) Usable(now time.Time) bool {
	return i.IsActive && i.RemainingUses() > 0 && now.Before(i.ExpiresAt)
}

type InviteValidation struct {
	Valid          bool   `json:"valid"`
	DepartmentName string `json:"departmentName,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	Message        string `json:"message,omitempty"`
}
