package models

import "time"

// Application statuses
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is a user's request to become a mentor. Approval gates
// mentor profile setup.
type Application struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `json:"-"`

	Topic      string `gorm:"size:255;not null" json:"topic"`
	Motivation string `gorm:"type:text" json:"motivation"`
	Category   string `gorm:"size:30" json:"category"`
	Status     string `gorm:"size:20;default:'pending';index" json:"status"`

	ReviewedBy *uint      `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
