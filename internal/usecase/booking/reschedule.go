package booking

import (
	"context"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/timezone"
)

type RescheduleBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRescheduleBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:  repo,
		audit: audit,
	}
}

// Execute moves a CONFIRMED session to a new future time. Either party may
// reschedule; times are interpreted in the mentor's timezone.
func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	userID uint,
	bookingID uint,
	newStart string,
) (*models.Booking, error) {

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	m, err := uc.repo.GetMentorByID(ctx, b.MentorID)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID && m.UserID != userID {
		return nil, httperr.ErrBusiness("not_booking_party")
	}

	loc := timezone.Location(m.Timezone)
	start, err := parseScheduledAt(newStart, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	if err := domain.Reschedule(b, start, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "booking_rescheduled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
