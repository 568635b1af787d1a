package models

import "time"

// Notification types emitted by the booking workflow.
const (
	NotifyBookingConfirmed  = "booking_confirmed"
	NotifyBookingCancelled  = "booking_cancelled"
	NotifyBookingVerified   = "booking_verified"
	NotifyPayoutReleased    = "payout_released"
	NotifyFraudReported     = "fraud_reported"
	NotifyCompletionPending = "completion_pending"
	NotifyMentorTrusted     = "mentor_trusted"
	NotifyApplicationStatus = "application_status"
)

type Notification struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Type    string `gorm:"size:40;not null" json:"type"`
	Title   string `gorm:"size:150;not null" json:"title"`
	Message string `gorm:"size:500" json:"message"`
	Link    string `gorm:"size:255" json:"link"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}
