package booking

import (
	"context"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// VerifyResult reports what a single verification did to the mentor's trust
// state, so callers can fire the one-shot side effects (payout schedule
// switch, notifications) without re-reading.
type VerifyResult struct {
	Booking  *models.Booking
	Mentor   *models.Mentor
	Promoted bool
	Released int64
}

// FraudResult reports the outcome of recording a fraud report.
type FraudResult struct {
	Booking     *models.Booking
	Mentor      *models.Mentor
	AutoRefund  bool
	ReportCount int64
	Deactivated bool
}

type Repository interface {
	// -------- Booking lookup --------
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	GetBookingForUser(ctx context.Context, id, userID uint) (*models.Booking, error)
	GetBookingForMentor(ctx context.Context, id, mentorID uint) (*models.Booking, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error

	// -------- Mentor --------
	GetMentorByID(ctx context.Context, id uint) (*models.Mentor, error)
	GetMentorForUser(ctx context.Context, userID uint) (*models.Mentor, error)

	// -------- Verification (transactional) --------
	VerifyBooking(ctx context.Context, bookingID uint, now time.Time) (*VerifyResult, error)
	RecordFraudReport(ctx context.Context, bookingID uint, now time.Time, notes string) (*FraudResult, error)
	MarkPayoutRefunded(ctx context.Context, bookingID uint, now time.Time) error

	// -------- Sweeps --------
	CancelUnpaidBefore(ctx context.Context, cutoff time.Time, reason string) (int64, error)
	ListReminderCandidates(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, bookingID uint, now time.Time) error
	ListAutoConfirmDue(ctx context.Context, now time.Time, limit int) ([]models.Booking, error)
	ListReleasablePayouts(ctx context.Context, limit int) ([]models.Booking, error)
	ReleasePayout(ctx context.Context, bookingID uint, now time.Time) error

	// -------- Calendar --------
	ListAvailableSlots(ctx context.Context, mentorID uint, from, to time.Time) ([]models.AvailableSlot, error)
	ListBlockedSlots(ctx context.Context, mentorID uint, from, to time.Time) ([]models.BlockedSlot, error)
	ListActiveRules(ctx context.Context, mentorID uint) ([]models.AvailabilityRule, error)
}
