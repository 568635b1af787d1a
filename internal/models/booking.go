package models

import "time"

// Booking types
const (
	BookingTypeAccess  = "access"
	BookingTypeSession = "session"
)

// Payout lifecycle
const (
	PayoutHeld     = "held"
	PayoutReleased = "released"
	PayoutRefunded = "refunded"
)

type Booking struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:36;uniqueIndex" json:"code"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	MentorID uint   `gorm:"index;not null" json:"mentor_id"`
	Mentor   Mentor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"mentor"`

	Type   string `gorm:"size:10;not null" json:"type"`
	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`

	// money in minor currency units
	TotalPriceCents   int64 `json:"total_price_cents"`
	PlatformFeeCents  int64 `json:"platform_fee_cents"`
	MentorPayoutCents int64 `json:"mentor_payout_cents"`

	StripePaymentIntentID string     `gorm:"size:64;index" json:"-"`
	StripePaidAt          *time.Time `json:"stripe_paid_at"`

	MentorCompletedAt  *time.Time `json:"mentor_completed_at"`
	StudentConfirmedAt *time.Time `json:"student_confirmed_at"`
	IsVerified         bool       `gorm:"default:false" json:"is_verified"`
	VerifiedAt         *time.Time `json:"verified_at"`
	AutoConfirmAt      *time.Time `gorm:"index" json:"auto_confirm_at"`

	PayoutStatus     string     `gorm:"size:10;default:'held';index" json:"payout_status"`
	PayoutReleasedAt *time.Time `json:"payout_released_at"`

	IsFraudReported bool       `gorm:"default:false" json:"is_fraud_reported"`
	FraudReportedAt *time.Time `json:"fraud_reported_at"`
	FraudNotes      string     `gorm:"size:1000" json:"fraud_notes"`

	CancellationReason string     `gorm:"size:255" json:"cancellation_reason"`
	ReminderSentAt     *time.Time `json:"reminder_sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionEnd is the scheduled end of a session booking, zero for access passes.
func (b *Booking) SessionEnd() time.Time {
	if b.ScheduledAt == nil {
		return time.Time{}
	}
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
