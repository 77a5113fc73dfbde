package models

import "time"

type Appointment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"size:1000" json:"description"`
	Location    string `gorm:"size:500" json:"location"`
	Type        string `gorm:"size:20;default:'meeting'" json:"type"`
	Notes       string `gorm:"size:1000" json:"notes"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Status is a cache of the derived status; see domain/appointment.Resolve.
	Status       string     `gorm:"size:30;index;default:'draft'" json:"status"`
	InviteSentAt *time.Time `json:"invite_sent_at"`

	CreatorID    string  `gorm:"size:100;index;not null" json:"creator_id"`
	CreatorEmail string  `gorm:"size:255" json:"creator_email"`
	ProcessID    *string `gorm:"size:100" json:"process_id,omitempty"`

	Invitees []Invitee     `gorm:"serializer:json;type:text" json:"invitees"`
	History  []StatusEntry `gorm:"serializer:json;type:text" json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invitee is owned by its appointment and only ever replaced as part of the
// whole list.
type Invitee struct {
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Status        string     `json:"status"`
	InvitedAt     time.Time  `json:"invited_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	Justification *string    `json:"justification,omitempty"`
	AutoResponse  bool       `json:"auto_response"`
}

// StatusEntry is one append-only line of an appointment's status history.
type StatusEntry struct {
	At     time.Time `json:"at"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason"`
	Actor  string    `json:"actor"`
}
