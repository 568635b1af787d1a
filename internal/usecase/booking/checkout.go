package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
	"github.com/mentorbase/mentor-marketplace/internal/timezone"
)

// PlatformFeePercent is the marketplace cut, applied at checkout.
const PlatformFeePercent = 10

// MinAdvanceMinutes is the minimum lead time for booking a session slot.
const MinAdvanceMinutes = 60

type CreateCheckoutInput struct {
	MentorID uint
	Type     string // access | session

	// session-only
	ScheduledAt     string // RFC3339 or "2006-01-02 15:04" in the mentor's timezone
	DurationMinutes int
}

type CheckoutOutput struct {
	Booking     *models.Booking           `json:"booking"`
	CheckoutURL string                    `json:"checkout_url"`
	Session     *payments.CheckoutSession `json:"-"`
}

type CreateCheckout struct {
	repo     domain.Repository
	payments payments.Processor
	audit    *audit.Dispatcher
}

func NewCreateCheckout(
	repo domain.Repository,
	proc payments.Processor,
	audit *audit.Dispatcher,
) *CreateCheckout {
	return &CreateCheckout{
		repo:     repo,
		payments: proc,
		audit:    audit,
	}
}

func (uc *CreateCheckout) Execute(
	ctx context.Context,
	userID uint,
	in CreateCheckoutInput,
) (*CheckoutOutput, error) {

	m, err := uc.repo.GetMentorByID(ctx, in.MentorID)
	if err != nil {
		return nil, httperr.ErrBusiness("mentor_not_found")
	}
	if !m.IsActive {
		return nil, httperr.ErrBusiness("mentor_inactive")
	}
	if m.UserID == userID {
		return nil, httperr.ErrBusiness("cannot_book_self")
	}

	b := &models.Booking{
		Code:         uuid.New().String(),
		UserID:       userID,
		MentorID:     m.ID,
		Type:         in.Type,
		Status:       string(domain.InitialStatus()),
		PayoutStatus: models.PayoutHeld,
	}

	var title string

	switch in.Type {
	case models.BookingTypeAccess:
		if m.OfferType == models.OfferTime {
			return nil, httperr.ErrBusiness("access_not_offered")
		}
		if m.AccessPriceCents <= 0 {
			return nil, httperr.ErrBusiness("access_not_priced")
		}
		b.TotalPriceCents = m.AccessPriceCents
		title = fmt.Sprintf("Access pass: %s", m.Name)

	case models.BookingTypeSession:
		if m.OfferType == models.OfferAccess {
			return nil, httperr.ErrBusiness("sessions_not_offered")
		}
		if m.HourlyRateCents <= 0 {
			return nil, httperr.ErrBusiness("sessions_not_priced")
		}
		if in.DurationMinutes <= 0 {
			return nil, httperr.ErrBusiness("invalid_duration")
		}

		loc := timezone.Location(m.Timezone)
		start, err := parseScheduledAt(in.ScheduledAt, loc)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date_or_time")
		}

		now := timezone.NowIn(m.Timezone)
		if start.Before(now.Add(MinAdvanceMinutes * time.Minute)) {
			return nil, httperr.ErrBusiness("too_soon")
		}

		b.ScheduledAt = &start
		b.DurationMinutes = in.DurationMinutes
		b.TotalPriceCents = m.HourlyRateCents * int64(in.DurationMinutes) / 60
		title = fmt.Sprintf("1:1 session with %s", m.Name)

	default:
		return nil, httperr.ErrBusiness("invalid_booking_type")
	}

	b.PlatformFeeCents = b.TotalPriceCents * PlatformFeePercent / 100
	b.MentorPayoutCents = b.TotalPriceCents - b.PlatformFeeCents

	if err := uc.repo.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	sess, err := uc.payments.CreateCheckoutSession(ctx, b, m, title)
	if err != nil {
		return nil, err
	}

	if sess.PaymentIntentID != "" {
		b.StripePaymentIntentID = sess.PaymentIntentID
		if err := uc.repo.UpdateBooking(ctx, b); err != nil {
			return nil, err
		}
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "booking_checkout_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return &CheckoutOutput{
		Booking:     b,
		CheckoutURL: sess.URL,
		Session:     sess,
	}, nil
}

func parseScheduledAt(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", raw, loc)
}
