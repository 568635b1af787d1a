package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

func paidBooking(status Status) *models.Booking {
	paid := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:           1,
		Type:         models.BookingTypeSession,
		Status:       string(status),
		StripePaidAt: &paid,
		PayoutStatus: models.PayoutHeld,
	}
}

func TestConfirm_RequiresPayment(t *testing.T) {
	b := paidBooking(StatusPending)
	b.StripePaidAt = nil

	err := Confirm(b, time.Now())
	assert.True(t, httperr.IsBusiness(err, "not_paid"))
	assert.Equal(t, string(StatusPending), b.Status)
}

func TestConfirm_Paid(t *testing.T) {
	b := paidBooking(StatusPending)

	require.NoError(t, Confirm(b, time.Now()))
	assert.Equal(t, string(StatusConfirmed), b.Status)
}

func TestComplete_OpensAutoConfirmWindow(t *testing.T) {
	b := paidBooking(StatusConfirmed)
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	require.NoError(t, Complete(b, now))

	assert.Equal(t, string(StatusCompleted), b.Status)
	require.NotNil(t, b.MentorCompletedAt)
	require.NotNil(t, b.AutoConfirmAt)
	assert.Equal(t, now.Add(AutoConfirmWindow), *b.AutoConfirmAt)
}

func TestVerify_OnlyCompleted(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusRefunded} {
		b := paidBooking(status)
		err := Verify(b, time.Now())
		assert.True(t, httperr.IsBusiness(err, "invalid_state"), "status %s", status)
	}
}

func TestVerify_SetsTimestamps(t *testing.T) {
	b := paidBooking(StatusCompleted)
	now := time.Now().UTC()

	require.NoError(t, Verify(b, now))

	assert.True(t, b.IsVerified)
	require.NotNil(t, b.VerifiedAt)
	require.NotNil(t, b.StudentConfirmedAt)
	assert.Equal(t, now, *b.VerifiedAt)
}

func TestVerify_RejectsFraudReported(t *testing.T) {
	b := paidBooking(StatusCompleted)
	b.IsFraudReported = true

	err := Verify(b, time.Now())
	assert.True(t, httperr.IsBusiness(err, "fraud_reported"))
	assert.False(t, b.IsVerified)
}

func TestVerify_AlreadyVerified(t *testing.T) {
	b := paidBooking(StatusCompleted)
	require.NoError(t, Verify(b, time.Now()))

	err := Verify(b, time.Now())
	assert.True(t, httperr.IsBusiness(err, "already_verified"))
}

func TestReportFraud_SetsHold(t *testing.T) {
	b := paidBooking(StatusCompleted)
	now := time.Now().UTC()

	require.NoError(t, ReportFraud(b, now, "mentor never showed up to the call"))

	assert.True(t, b.IsFraudReported)
	assert.Equal(t, models.PayoutHeld, b.PayoutStatus)
	require.NotNil(t, b.FraudReportedAt)
}

func TestReportFraud_NotesTooShort(t *testing.T) {
	b := paidBooking(StatusCompleted)

	err := ReportFraud(b, time.Now(), "bad   ")
	assert.True(t, httperr.IsBusiness(err, "fraud_notes_too_short"))
	assert.False(t, b.IsFraudReported)
}

// The fraud flag is monotonic: a second report must fail and leave the
// original notes and timestamp untouched.
func TestReportFraud_Monotonic(t *testing.T) {
	b := paidBooking(StatusCompleted)
	first := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	require.NoError(t, ReportFraud(b, first, "no session was ever delivered"))

	err := ReportFraud(b, first.Add(time.Hour), "changing my story entirely")
	assert.True(t, httperr.IsBusiness(err, "already_reported"))
	assert.Equal(t, "no session was ever delivered", b.FraudNotes)
	assert.Equal(t, first, *b.FraudReportedAt)
}

func TestReportFraud_VerifiedWinsRace(t *testing.T) {
	b := paidBooking(StatusCompleted)
	require.NoError(t, Verify(b, time.Now()))

	err := ReportFraud(b, time.Now(), "actually I want my money back")
	assert.True(t, httperr.IsBusiness(err, "already_verified"))
}

func TestReschedule(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(24 * time.Hour)
	sent := now.Add(-time.Hour)

	b := paidBooking(StatusConfirmed)
	b.ScheduledAt = &old
	b.ReminderSentAt = &sent

	newStart := now.Add(48 * time.Hour)
	require.NoError(t, Reschedule(b, newStart, now))

	assert.Equal(t, newStart, *b.ScheduledAt)
	assert.Nil(t, b.ReminderSentAt, "reminder must re-arm after a move")
}

func TestReschedule_PastTime(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	b := paidBooking(StatusConfirmed)

	err := Reschedule(b, now.Add(-time.Hour), now)
	assert.True(t, httperr.IsBusiness(err, "time_in_past"))
}

func TestReschedule_AccessPass(t *testing.T) {
	b := paidBooking(StatusConfirmed)
	b.Type = models.BookingTypeAccess

	err := Reschedule(b, time.Now().Add(time.Hour), time.Now())
	assert.True(t, httperr.IsBusiness(err, "not_a_session"))
}

func TestPayoutReleasable(t *testing.T) {
	held := paidBooking(StatusCompleted)
	assert.False(t, PayoutReleasable(held, false), "unverified, untrusted: hold")
	assert.True(t, PayoutReleasable(held, true), "trusted mentor skips escrow")

	held.IsVerified = true
	assert.True(t, PayoutReleasable(held, false), "verified releases")

	held.IsFraudReported = true
	assert.False(t, PayoutReleasable(held, true), "fraud freezes regardless of trust")

	released := paidBooking(StatusCompleted)
	released.PayoutStatus = models.PayoutReleased
	released.IsVerified = true
	assert.False(t, PayoutReleasable(released, true), "already out of escrow")
}

func TestApplyRefund_PendingMovesToRefunded(t *testing.T) {
	now := time.Now().UTC()
	released := now.Add(-time.Hour)

	for _, status := range []Status{StatusPending, StatusConfirmed} {
		b := paidBooking(status)
		b.PayoutReleasedAt = &released

		require.NoError(t, ApplyRefund(b, now), "status %s", status)
		assert.Equal(t, string(StatusRefunded), b.Status)
		assert.Equal(t, models.PayoutRefunded, b.PayoutStatus)
		assert.Nil(t, b.PayoutReleasedAt)
	}
}

func TestApplyRefund_CompletedStaysTerminal(t *testing.T) {
	b := paidBooking(StatusCompleted)

	require.NoError(t, ApplyRefund(b, time.Now().UTC()))

	assert.Equal(t, string(StatusCompleted), b.Status)
	assert.Equal(t, models.PayoutRefunded, b.PayoutStatus)
}

func TestApplyRefund_VerifiedUntouched(t *testing.T) {
	b := paidBooking(StatusCompleted)
	b.IsVerified = true

	err := ApplyRefund(b, time.Now().UTC())
	assert.True(t, httperr.IsBusiness(err, "already_verified"))
	assert.Equal(t, models.PayoutHeld, b.PayoutStatus)
}

func TestApplyRefund_Idempotent(t *testing.T) {
	b := paidBooking(StatusPending)

	require.NoError(t, ApplyRefund(b, time.Now().UTC()))
	err := ApplyRefund(b, time.Now().UTC())
	assert.True(t, httperr.IsBusiness(err, "already_refunded"))
}
