package booking

import (
	"strings"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// AutoConfirmWindow is how long after the learner marks a session complete
// the verification is assumed if they stay silent.
const AutoConfirmWindow = 72 * time.Hour

// MinFraudNotesLen is the minimum free-text reason length for a fraud report.
const MinFraudNotesLen = 10

// ===============================
// Domain Actions
// ===============================

// Confirm moves a paid booking into CONFIRMED. Only the owning mentor (or
// the payment webhook for access passes) drives this.
func Confirm(b *models.Booking, now time.Time) error {
	if err := CanTransition(Status(b.Status), StatusConfirmed); err != nil {
		return err
	}
	if b.StripePaidAt == nil {
		return httperr.ErrBusiness("not_paid")
	}

	b.Status = string(StatusConfirmed)
	return nil
}

func Cancel(b *models.Booking, now time.Time, reason string) error {
	if err := CanTransition(Status(b.Status), StatusCancelled); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancellationReason = reason
	return nil
}

// Complete records the learner's post-session survey and opens the
// verification window.
func Complete(b *models.Booking, now time.Time) error {
	if err := CanTransition(Status(b.Status), StatusCompleted); err != nil {
		return err
	}

	deadline := now.Add(AutoConfirmWindow)
	b.Status = string(StatusCompleted)
	b.MentorCompletedAt = &now
	b.AutoConfirmAt = &deadline
	return nil
}

// Verify marks a COMPLETED booking as learner-verified. Mutually exclusive
// with fraud reporting.
func Verify(b *models.Booking, now time.Time) error {
	if Status(b.Status) != StatusCompleted {
		return httperr.ErrBusinessMsg("invalid_state", "only completed bookings can be verified")
	}
	if b.IsFraudReported {
		return httperr.ErrBusiness("fraud_reported")
	}
	if b.IsVerified {
		return httperr.ErrBusiness("already_verified")
	}

	b.StudentConfirmedAt = &now
	b.IsVerified = true
	b.VerifiedAt = &now
	return nil
}

// ReportFraud records a learner's fraud report. The flag is monotonic: a
// second report fails and must not touch the original notes or timestamp.
func ReportFraud(b *models.Booking, now time.Time, notes string) error {
	if Status(b.Status) != StatusCompleted {
		return httperr.ErrBusinessMsg("invalid_state", "only completed bookings can be reported")
	}
	if b.IsVerified {
		return httperr.ErrBusiness("already_verified")
	}
	if b.IsFraudReported {
		return httperr.ErrBusiness("already_reported")
	}
	if len(strings.TrimSpace(notes)) < MinFraudNotesLen {
		return httperr.ErrBusinessMsg("fraud_notes_too_short", "fraud reason must be at least 10 characters")
	}

	b.IsFraudReported = true
	b.FraudReportedAt = &now
	b.FraudNotes = notes
	b.PayoutStatus = models.PayoutHeld
	return nil
}

// ApplyRefund records a provider-side refund. The payout bookkeeping always
// moves to REFUNDED; the booking status follows only where the transition
// table allows it, so COMPLETED bookings keep their terminal status and the
// refund shows up in payout_status alone.
func ApplyRefund(b *models.Booking, now time.Time) error {
	if b.IsVerified {
		return httperr.ErrBusiness("already_verified")
	}
	if b.PayoutStatus == models.PayoutRefunded {
		return httperr.ErrBusiness("already_refunded")
	}

	if CanTransition(Status(b.Status), StatusRefunded) == nil {
		b.Status = string(StatusRefunded)
	}
	b.PayoutStatus = models.PayoutRefunded
	b.PayoutReleasedAt = nil
	return nil
}

// Reschedule moves a CONFIRMED session booking to a new future time.
func Reschedule(b *models.Booking, newStart time.Time, now time.Time) error {
	if Status(b.Status) != StatusConfirmed {
		return httperr.ErrBusinessMsg("invalid_state", "only confirmed bookings can be rescheduled")
	}
	if b.Type != models.BookingTypeSession {
		return httperr.ErrBusiness("not_a_session")
	}
	if !newStart.After(now) {
		return httperr.ErrBusiness("time_in_past")
	}

	b.ScheduledAt = &newStart
	b.ReminderSentAt = nil
	return nil
}

// PayoutReleasable reports whether a held payout has become eligible:
// the booking is verified, or the mentor already graduated to trusted.
func PayoutReleasable(b *models.Booking, mentorTrusted bool) bool {
	if b.PayoutStatus != models.PayoutHeld {
		return false
	}
	if b.IsFraudReported {
		return false
	}
	return b.IsVerified || mentorTrusted
}
