package booking

import (
	"context"
	"log"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
)

type VerifyBooking struct {
	repo     domain.Repository
	payments payments.Processor
	audit    *audit.Dispatcher
	notifier *notify.Notifier
}

func NewVerifyBooking(
	repo domain.Repository,
	proc payments.Processor,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
) *VerifyBooking {
	return &VerifyBooking{
		repo:     repo,
		payments: proc,
		audit:    audit,
		notifier: notifier,
	}
}

// Execute runs the learner verification: the transactional counter
// recompute and possible trusted promotion happen in the repository; the
// one-shot side effects (payout schedule switch, payout attempt,
// notifications) happen here and are never fatal to the verification.
func (uc *VerifyBooking) Execute(
	ctx context.Context,
	userID uint,
	bookingID uint,
) (*domain.VerifyResult, error) {

	b, err := uc.repo.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	return uc.run(ctx, &userID, b.ID)
}

// ExecuteSystem verifies on behalf of the system (auto-confirm sweep); no
// ownership check, no acting user on the audit trail.
func (uc *VerifyBooking) ExecuteSystem(
	ctx context.Context,
	bookingID uint,
) (*domain.VerifyResult, error) {
	return uc.run(ctx, nil, bookingID)
}

func (uc *VerifyBooking) run(
	ctx context.Context,
	userID *uint,
	bookingID uint,
) (*domain.VerifyResult, error) {

	now := time.Now().UTC()
	result, err := uc.repo.VerifyBooking(ctx, bookingID, now)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "booking_verified",
		Entity:   "booking",
		EntityID: &result.Booking.ID,
	})

	uc.releaseAndPay(ctx, result, now)

	if result.Promoted {
		if result.Mentor.StripeAccountID != "" {
			if err := uc.payments.UpdatePayoutSchedule(ctx, result.Mentor.StripeAccountID, true); err != nil {
				log.Printf("payout schedule update failed for mentor %d: %v", result.Mentor.ID, err)
			}
		}
		uc.notifier.MentorTrusted(result.Mentor.UserID)
	}

	uc.notifier.BookingVerified(result.Mentor.UserID, result.Booking.ID)

	return result, nil
}

// releaseAndPay releases the verified booking's own held payout and attempts
// the transfer. Failures are logged and left for the payout sweep to retry.
func (uc *VerifyBooking) releaseAndPay(
	ctx context.Context,
	result *domain.VerifyResult,
	now time.Time,
) {

	if err := uc.repo.ReleasePayout(ctx, result.Booking.ID, now); err != nil {
		if !httperr.IsBusiness(err, "payout_not_held") {
			log.Printf("payout release failed for booking %d: %v", result.Booking.ID, err)
		}
		return
	}

	if err := uc.payments.ProcessBookingPayout(ctx, result.Booking, result.Mentor); err != nil {
		log.Printf("payout attempt failed for booking %d: %v", result.Booking.ID, err)
	}
}
