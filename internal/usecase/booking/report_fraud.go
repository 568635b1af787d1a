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

type ReportFraud struct {
	repo     domain.Repository
	payments payments.Processor
	audit    *audit.Dispatcher
	notifier *notify.Notifier
}

func NewReportFraud(
	repo domain.Repository,
	proc payments.Processor,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
) *ReportFraud {
	return &ReportFraud{
		repo:     repo,
		payments: proc,
		audit:    audit,
		notifier: notifier,
	}
}

// Execute records a learner's fraud report. When the mentor is not trusted
// and the payout never left escrow the refund runs automatically; otherwise
// the mentor is flagged for manual admin review. A second report against a
// mentor force-deactivates them.
func (uc *ReportFraud) Execute(
	ctx context.Context,
	userID uint,
	bookingID uint,
	notes string,
) (*domain.FraudResult, error) {

	b, err := uc.repo.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := time.Now().UTC()
	result, err := uc.repo.RecordFraudReport(ctx, b.ID, now, notes)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "booking_fraud_reported",
		Entity:   "booking",
		EntityID: &result.Booking.ID,
		Metadata: map[string]any{"deactivated": result.Deactivated},
	})

	if result.AutoRefund && result.Booking.StripePaymentIntentID != "" {
		if err := uc.payments.Refund(ctx, result.Booking.StripePaymentIntentID); err != nil {
			// leave payout_status held; an admin resolves it by hand
			log.Printf("auto-refund failed for booking %d: %v", result.Booking.ID, err)
		} else if err := uc.repo.MarkPayoutRefunded(ctx, result.Booking.ID, now); err != nil {
			log.Printf("refund bookkeeping failed for booking %d: %v", result.Booking.ID, err)
		}
	}

	uc.notifier.FraudReported(result.Mentor.UserID, result.Booking.ID)

	return result, nil
}
