package models

import "time"

// AvailabilityRule is a recurring weekly availability window, times in the
// mentor's configured timezone.
type AvailabilityRule struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	MentorID uint `gorm:"index;not null" json:"mentor_id"`

	Weekday   int    `json:"weekday"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Active    bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockedSlot is a one-off interval during which the mentor takes no bookings.
type BlockedSlot struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	MentorID uint `gorm:"index;not null" json:"mentor_id"`

	StartsAt time.Time `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`
	Reason   string    `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

// AvailableSlot is a concrete bookable slot published by the mentor.
type AvailableSlot struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	MentorID uint `gorm:"index;not null" json:"mentor_id"`

	StartsAt        time.Time `gorm:"not null;index" json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	IsFree          bool      `gorm:"default:false" json:"is_free"`
	Booked          bool      `gorm:"default:false" json:"booked"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *AvailableSlot) EndsAt() time.Time {
	return s.StartsAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
