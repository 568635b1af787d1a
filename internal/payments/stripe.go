package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// StripeProcessor implements Processor against Stripe Connect: hosted
// checkout with an application fee, transfers for held-payout release, and
// payout-schedule switching on the mentor's connected account.
type StripeProcessor struct {
	api     *client.API
	baseURL string
}

func NewStripeProcessor(secretKey, baseURL string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProcessor{
		api:     api,
		baseURL: baseURL,
	}
}

func (p *StripeProcessor) CreateCheckoutSession(
	ctx context.Context,
	b *models.Booking,
	m *models.Mentor,
	title string,
) (*CheckoutSession, error) {

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(b.TotalPriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(title),
					},
				},
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/bookings/%d?checkout=success", p.baseURL, b.ID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/bookings/%d?checkout=cancelled", p.baseURL, b.ID)),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", fmt.Sprintf("%d", b.ID))
	params.AddMetadata("booking_code", b.Code)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

// ProcessBookingPayout transfers the mentor's cut of a released booking to
// their connected account.
func (p *StripeProcessor) ProcessBookingPayout(
	ctx context.Context,
	b *models.Booking,
	m *models.Mentor,
) error {

	if m.StripeAccountID == "" {
		return fmt.Errorf("mentor %d has no connected account", m.ID)
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(b.MentorPayoutCents),
		Currency:    stripe.String("usd"),
		Destination: stripe.String(m.StripeAccountID),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", fmt.Sprintf("%d", b.ID))

	if _, err := p.api.Transfers.New(params); err != nil {
		return fmt.Errorf("transfer payout for booking %d: %w", b.ID, err)
	}
	return nil
}

// UpdatePayoutSchedule switches the connected account between weekly (held
// posture) and daily (trusted) payout cadence. Called exactly once at the
// moment a mentor crosses the trusted threshold.
func (p *StripeProcessor) UpdatePayoutSchedule(
	ctx context.Context,
	accountID string,
	toDaily bool,
) error {

	interval := "weekly"
	if toDaily {
		interval = "daily"
	}

	params := &stripe.AccountParams{
		Settings: &stripe.AccountSettingsParams{
			Payouts: &stripe.AccountSettingsPayoutsParams{
				Schedule: &stripe.AccountSettingsPayoutsScheduleParams{
					Interval: stripe.String(interval),
				},
			},
		},
	}
	params.Context = ctx

	if _, err := p.api.Accounts.Update(accountID, params); err != nil {
		return fmt.Errorf("update payout schedule for %s: %w", accountID, err)
	}
	return nil
}

func (p *StripeProcessor) Refund(ctx context.Context, paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx

	if _, err := p.api.Refunds.New(params); err != nil {
		return fmt.Errorf("refund %s: %w", paymentIntentID, err)
	}
	return nil
}

var _ Processor = (*StripeProcessor)(nil)
