package models

import "time"

// SubscriptionPlan is a mentor-published access-pass bundle.
type SubscriptionPlan struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	MentorID uint `gorm:"index;not null" json:"mentor_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
