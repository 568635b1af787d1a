package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

func seedMentor(repo *fakeRepo) *models.Mentor {
	m := &models.Mentor{
		ID:               1,
		UserID:           10,
		Name:             "Dana",
		OfferType:        models.OfferBoth,
		AccessPriceCents: 9900,
		HourlyRateCents:  12000,
		IsActive:         true,
		Timezone:         "UTC",
	}
	repo.mentors[m.ID] = m
	return m
}

func TestCreateCheckout_AccessPass(t *testing.T) {
	repo := newFakeRepo()
	seedMentor(repo)
	proc := &fakeProcessor{}
	uc := NewCreateCheckout(repo, proc, testDispatcher())

	out, err := uc.Execute(context.Background(), 2, CreateCheckoutInput{
		MentorID: 1,
		Type:     models.BookingTypeAccess,
	})
	require.NoError(t, err)

	b := out.Booking
	assert.Equal(t, models.BookingTypeAccess, b.Type)
	assert.Equal(t, "pending", b.Status)
	assert.Equal(t, int64(9900), b.TotalPriceCents)
	assert.Equal(t, int64(990), b.PlatformFeeCents)
	assert.Equal(t, int64(8910), b.MentorPayoutCents)
	assert.Equal(t, models.PayoutHeld, b.PayoutStatus)
	assert.Equal(t, "pi_test", b.StripePaymentIntentID)
	assert.NotEmpty(t, b.Code)
	assert.NotEmpty(t, out.CheckoutURL)
	assert.Equal(t, 1, proc.checkouts)
}

func TestCreateCheckout_SessionPricing(t *testing.T) {
	repo := newFakeRepo()
	seedMentor(repo)
	uc := NewCreateCheckout(repo, &fakeProcessor{}, testDispatcher())

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Minute)

	out, err := uc.Execute(context.Background(), 2, CreateCheckoutInput{
		MentorID:        1,
		Type:            models.BookingTypeSession,
		ScheduledAt:     start.Format(time.RFC3339),
		DurationMinutes: 90,
	})
	require.NoError(t, err)

	// 90 minutes at 12000/h
	assert.Equal(t, int64(18000), out.Booking.TotalPriceCents)
	assert.Equal(t, int64(1800), out.Booking.PlatformFeeCents)
	assert.Equal(t, 90, out.Booking.DurationMinutes)
	require.NotNil(t, out.Booking.ScheduledAt)
}

func TestCreateCheckout_SessionTooSoon(t *testing.T) {
	repo := newFakeRepo()
	seedMentor(repo)
	uc := NewCreateCheckout(repo, &fakeProcessor{}, testDispatcher())

	_, err := uc.Execute(context.Background(), 2, CreateCheckoutInput{
		MentorID:        1,
		Type:            models.BookingTypeSession,
		ScheduledAt:     time.Now().UTC().Add(10 * time.Minute).Format(time.RFC3339),
		DurationMinutes: 60,
	})
	assert.True(t, httperr.IsBusiness(err, "too_soon"))
}

func TestCreateCheckout_OfferTypeMismatch(t *testing.T) {
	repo := newFakeRepo()
	m := seedMentor(repo)
	m.OfferType = models.OfferTime
	uc := NewCreateCheckout(repo, &fakeProcessor{}, testDispatcher())

	_, err := uc.Execute(context.Background(), 2, CreateCheckoutInput{
		MentorID: 1,
		Type:     models.BookingTypeAccess,
	})
	assert.True(t, httperr.IsBusiness(err, "access_not_offered"))
}

func TestCreateCheckout_SelfBooking(t *testing.T) {
	repo := newFakeRepo()
	m := seedMentor(repo)
	uc := NewCreateCheckout(repo, &fakeProcessor{}, testDispatcher())

	_, err := uc.Execute(context.Background(), m.UserID, CreateCheckoutInput{
		MentorID: 1,
		Type:     models.BookingTypeAccess,
	})
	assert.True(t, httperr.IsBusiness(err, "cannot_book_self"))
}

func TestCreateCheckout_InactiveMentor(t *testing.T) {
	repo := newFakeRepo()
	m := seedMentor(repo)
	m.IsActive = false
	uc := NewCreateCheckout(repo, &fakeProcessor{}, testDispatcher())

	_, err := uc.Execute(context.Background(), 2, CreateCheckoutInput{
		MentorID: 1,
		Type:     models.BookingTypeAccess,
	})
	assert.True(t, httperr.IsBusiness(err, "mentor_inactive"))
}
