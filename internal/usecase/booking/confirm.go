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

type MentorConfirm struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
}

func NewMentorConfirm(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
) *MentorConfirm {
	return &MentorConfirm{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
	}
}

// Execute drives PENDING -> CONFIRMED. Only the owning mentor may confirm,
// and only once payment has landed.
func (uc *MentorConfirm) Execute(
	ctx context.Context,
	mentorUserID uint,
	bookingID uint,
) (*models.Booking, error) {

	m, err := uc.repo.GetMentorForUser(ctx, mentorUserID)
	if err != nil {
		return nil, httperr.ErrBusiness("mentor_not_found")
	}

	b, err := uc.repo.GetBookingForMentor(ctx, bookingID, m.ID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := domain.Confirm(b, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &mentorUserID,
		Action:   "booking_confirmed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	uc.notifier.BookingConfirmed(b.UserID, b.ID, m.Name)

	return b, nil
}
