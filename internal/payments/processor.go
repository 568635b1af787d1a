package payments

import (
	"context"

	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// CheckoutSession is the hosted-checkout handle returned at booking creation.
type CheckoutSession struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	PaymentIntentID string `json:"-"`
}

// Processor is the money-movement boundary. The booking workflow never
// moves funds itself; it maintains payout_status as a gate and calls here.
// ProcessBookingPayout and UpdatePayoutSchedule failures are retryable and
// must be treated as non-fatal by callers.
type Processor interface {
	CreateCheckoutSession(ctx context.Context, b *models.Booking, m *models.Mentor, title string) (*CheckoutSession, error)
	ProcessBookingPayout(ctx context.Context, b *models.Booking, m *models.Mentor) error
	UpdatePayoutSchedule(ctx context.Context, accountID string, toDaily bool) error
	Refund(ctx context.Context, paymentIntentID string) error
}
