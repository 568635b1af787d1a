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

func completedBooking(id, userID, mentorID uint) *models.Booking {
	paid := time.Now().UTC().Add(-48 * time.Hour)
	return &models.Booking{
		ID:                    id,
		Code:                  "code",
		UserID:                userID,
		MentorID:              mentorID,
		Type:                  models.BookingTypeSession,
		Status:                "completed",
		StripePaidAt:          &paid,
		StripePaymentIntentID: "pi_1",
		PayoutStatus:          models.PayoutHeld,
		MentorPayoutCents:     9000,
	}
}

func newVerifyFixture() (*fakeRepo, *fakeProcessor, *VerifyBooking) {
	repo := newFakeRepo()
	proc := &fakeProcessor{}
	uc := NewVerifyBooking(repo, proc, testDispatcher(), testNotifier())
	return repo, proc, uc
}

func TestVerifyBooking_ReleasesOwnPayout(t *testing.T) {
	repo, proc, uc := newVerifyFixture()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, IsActive: true}
	repo.bookings[1] = completedBooking(1, 2, 1)

	result, err := uc.Execute(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.True(t, result.Booking.IsVerified)
	assert.False(t, result.Promoted)
	assert.Equal(t, 1, repo.mentors[1].VerifiedBookingsCount)
	assert.Equal(t, models.PayoutReleased, repo.bookings[1].PayoutStatus)
	assert.Equal(t, []uint{1}, proc.payouts)
}

func TestVerifyBooking_OwnershipRequired(t *testing.T) {
	repo, _, uc := newVerifyFixture()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10}
	repo.bookings[1] = completedBooking(1, 2, 1)

	_, err := uc.Execute(context.Background(), 99, 1)
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}

// The fifth verification promotes the mentor and bulk-releases every other
// held payout in the same pass.
func TestVerifyBooking_PromotionAtThreshold(t *testing.T) {
	repo, proc, uc := newVerifyFixture()
	repo.mentors[1] = &models.Mentor{
		ID:                    1,
		UserID:                10,
		IsActive:              true,
		VerifiedBookingsCount: 4,
		StripeAccountID:       "acct_1",
	}

	// the booking being verified, plus two other held completed bookings
	repo.bookings[1] = completedBooking(1, 2, 1)
	repo.bookings[2] = completedBooking(2, 3, 1)
	repo.bookings[3] = completedBooking(3, 4, 1)

	result, err := uc.Execute(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.True(t, result.Promoted)
	assert.True(t, repo.mentors[1].IsTrusted)
	assert.Equal(t, 5, repo.mentors[1].VerifiedBookingsCount)
	assert.Equal(t, int64(2), result.Released)

	assert.Equal(t, models.PayoutReleased, repo.bookings[2].PayoutStatus)
	assert.Equal(t, models.PayoutReleased, repo.bookings[3].PayoutStatus)

	// promotion switches the payout schedule exactly once
	assert.Equal(t, []string{"acct_1"}, proc.scheduleUpdates)
}

func TestVerifyBooking_PromotionSkipsFraudReported(t *testing.T) {
	repo, _, uc := newVerifyFixture()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, VerifiedBookingsCount: 4}

	repo.bookings[1] = completedBooking(1, 2, 1)
	disputed := completedBooking(2, 3, 1)
	disputed.IsFraudReported = true
	repo.bookings[2] = disputed

	result, err := uc.Execute(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.True(t, result.Promoted)
	assert.Equal(t, int64(0), result.Released)
	assert.Equal(t, models.PayoutHeld, repo.bookings[2].PayoutStatus, "disputed payout stays frozen")
}

func TestVerifyBooking_NoDoubleVerification(t *testing.T) {
	repo, _, uc := newVerifyFixture()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10}
	repo.bookings[1] = completedBooking(1, 2, 1)

	_, err := uc.Execute(context.Background(), 2, 1)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), 2, 1)
	assert.True(t, httperr.IsBusiness(err, "already_verified"))
	assert.Equal(t, 1, repo.mentors[1].VerifiedBookingsCount, "counter must not re-increment")
}

func TestVerifyBooking_ExecuteSystem(t *testing.T) {
	repo, _, uc := newVerifyFixture()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10}
	repo.bookings[1] = completedBooking(1, 2, 1)

	// no ownership check on the system path
	result, err := uc.ExecuteSystem(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Booking.IsVerified)
}
