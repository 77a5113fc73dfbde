package dto

import "time"

type AppointmentListDTO struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Status        string     `json:"status"`
	InviteSentAt  *time.Time `json:"invite_sent_at"`
	Invitees      int        `json:"invitees"`
	Pending       int        `json:"pending"`
	Accepted      int        `json:"accepted"`
	Declined      int        `json:"declined"`
	PriorityScore int        `json:"priority_score"`
}
