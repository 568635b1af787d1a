package booking

import (
	"context"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type CompleteInput struct {
	SessionHappened bool
	Feedback        string
}

type CompleteBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:  repo,
		audit: audit,
	}
}

// Execute records the learner's post-session survey and marks the booking
// COMPLETED, opening the auto-confirm window. Despite the route name, the
// caller here is the booking's learner, not the mentor.
func (uc *CompleteBooking) Execute(
	ctx context.Context,
	userID uint,
	bookingID uint,
	in CompleteInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if !in.SessionHappened {
		return nil, httperr.ErrBusinessMsg("session_not_delivered", "report the booking instead of completing it")
	}

	if err := domain.Complete(b, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{"feedback": in.Feedback},
	})

	return b, nil
}
