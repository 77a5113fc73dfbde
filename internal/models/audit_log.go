package models

import "time"

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID string `gorm:"size:36;index" json:"appointment_id"`
	ActorID       string `gorm:"size:100" json:"actor_id"`
	Action        string `gorm:"size:50;not null" json:"action"`
	Metadata      string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
