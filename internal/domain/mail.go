package domain

import "time"

const MailTypeInvite = "invite"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type InviteMailData struct {
	InviteCode     string    `json:"inviteCode"`
	URL            string    `json:"url"`
	DepartmentName string    `json:"departmentName"`
	ExpiresAt      time.Time `json:"expiresAt"`
	Message        string    `json:"message,omitempty"`
}
