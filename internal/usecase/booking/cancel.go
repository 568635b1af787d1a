package booking

import (
	"context"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
)

type CancelBooking struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
	}
}

// Execute cancels a PENDING or CONFIRMED booking. Only the booker or the
// owning mentor may cancel.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	userID uint,
	bookingID uint,
	reason string,
) (*models.Booking, error) {

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := uc.assertCounterparty(ctx, b, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := domain.Cancel(b, now, reason); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	// tell the other side
	if userID == b.UserID {
		if m, err := uc.repo.GetMentorByID(ctx, b.MentorID); err == nil {
			uc.notifier.BookingCancelled(m.UserID, b.ID, "The learner cancelled the booking.")
		}
	} else {
		uc.notifier.BookingCancelled(b.UserID, b.ID, "The mentor cancelled the booking.")
	}

	return b, nil
}

func (uc *CancelBooking) assertCounterparty(
	ctx context.Context,
	b *models.Booking,
	userID uint,
) error {

	if b.UserID == userID {
		return nil
	}

	m, err := uc.repo.GetMentorByID(ctx, b.MentorID)
	if err == nil && m.UserID == userID {
		return nil
	}
	return httperr.ErrBusiness("not_booking_party")
}
