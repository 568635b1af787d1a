package jobs

import (
	"context"
	"log"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/cache"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
	ucbooking "github.com/mentorbase/mentor-marketplace/internal/usecase/booking"
)

const (
	// UnpaidTimeout is how long a PENDING booking may wait for payment.
	UnpaidTimeout = 30 * time.Minute

	// Reminder window: sessions that ended between 2h and 30min ago.
	ReminderWindowMin = 30 * time.Minute
	ReminderWindowMax = 2 * time.Hour

	sweepBatchLimit = 200
	lockTTL         = 5 * time.Minute
)

// SweepResult summarizes one sweep invocation. Per-item failures are
// counted, never fatal to the batch.
type SweepResult struct {
	Processed int   `json:"processed"`
	Failed    int   `json:"failed"`
	Skipped   bool  `json:"skipped,omitempty"`
	Cancelled int64 `json:"cancelled,omitempty"`
}

type Sweeper struct {
	repo     domain.Repository
	payments payments.Processor
	notifier *notify.Notifier
	verify   *ucbooking.VerifyBooking
	lock     *cache.SweepLock
}

func NewSweeper(
	repo domain.Repository,
	proc payments.Processor,
	notifier *notify.Notifier,
	verify *ucbooking.VerifyBooking,
	lock *cache.SweepLock,
) *Sweeper {
	return &Sweeper{
		repo:     repo,
		payments: proc,
		notifier: notifier,
		verify:   verify,
		lock:     lock,
	}
}

// CancelUnpaid bulk-cancels PENDING bookings past the payment timeout with
// no payment timestamp. Re-running finds nothing once already cancelled.
func (s *Sweeper) CancelUnpaid(ctx context.Context) (SweepResult, error) {
	ok, release, err := s.lock.Acquire(ctx, "cancel_unpaid", lockTTL)
	if err != nil {
		return SweepResult{}, err
	}
	if !ok {
		return SweepResult{Skipped: true}, nil
	}
	defer release()

	cutoff := time.Now().UTC().Add(-UnpaidTimeout)
	n, err := s.repo.CancelUnpaidBefore(ctx, cutoff, "payment_timeout")
	if err != nil {
		return SweepResult{}, err
	}

	if n > 0 {
		log.Printf("cancel-unpaid sweep: cancelled %d bookings", n)
	}
	return SweepResult{Processed: int(n), Cancelled: n}, nil
}

// CompletionReminders nudges learners whose session ended recently and who
// have not filled the completion survey. The sent-marker keeps re-runs from
// emitting duplicates.
func (s *Sweeper) CompletionReminders(ctx context.Context) (SweepResult, error) {
	ok, release, err := s.lock.Acquire(ctx, "completion_reminders", lockTTL)
	if err != nil {
		return SweepResult{}, err
	}
	if !ok {
		return SweepResult{Skipped: true}, nil
	}
	defer release()

	now := time.Now().UTC()
	windowStart := now.Add(-ReminderWindowMax)
	windowEnd := now.Add(-ReminderWindowMin)

	candidates, err := s.repo.ListReminderCandidates(ctx, windowStart, windowEnd)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, b := range candidates {
		mentorName := ""
		if m, err := s.repo.GetMentorByID(ctx, b.MentorID); err == nil {
			mentorName = m.Name
		}

		if err := s.repo.MarkReminderSent(ctx, b.ID, now); err != nil {
			log.Printf("reminder sweep: booking %d: %v", b.ID, err)
			result.Failed++
			continue
		}

		s.notifier.CompletionReminder(b.UserID, b.ID, mentorName)
		result.Processed++
	}

	return result, nil
}

// ProcessPayouts auto-confirms completed bookings whose verification window
// lapsed with no learner action and no fraud report, then releases and pays
// any held payouts that have become eligible.
func (s *Sweeper) ProcessPayouts(ctx context.Context) (SweepResult, error) {
	ok, release, err := s.lock.Acquire(ctx, "process_payouts", lockTTL)
	if err != nil {
		return SweepResult{}, err
	}
	if !ok {
		return SweepResult{Skipped: true}, nil
	}
	defer release()

	now := time.Now().UTC()
	var result SweepResult

	due, err := s.repo.ListAutoConfirmDue(ctx, now, sweepBatchLimit)
	if err != nil {
		return SweepResult{}, err
	}

	for _, b := range due {
		if _, err := s.verify.ExecuteSystem(ctx, b.ID); err != nil {
			// a racing manual verify or fraud report is fine; count real failures
			if _, isBusiness := httperr.AsBusiness(err); !isBusiness {
				log.Printf("payout sweep: auto-confirm booking %d: %v", b.ID, err)
				result.Failed++
				continue
			}
		}
		result.Processed++
	}

	releasable, err := s.repo.ListReleasablePayouts(ctx, sweepBatchLimit)
	if err != nil {
		return result, err
	}

	for _, b := range releasable {
		m, err := s.repo.GetMentorByID(ctx, b.MentorID)
		if err != nil {
			result.Failed++
			continue
		}

		if err := s.repo.ReleasePayout(ctx, b.ID, now); err != nil {
			if !httperr.IsBusiness(err, "payout_not_held") {
				log.Printf("payout sweep: release booking %d: %v", b.ID, err)
				result.Failed++
			}
			continue
		}

		if err := s.payments.ProcessBookingPayout(ctx, &b, m); err != nil {
			log.Printf("payout sweep: transfer booking %d: %v", b.ID, err)
		}

		s.notifier.PayoutReleased(m.UserID, b.ID)
		result.Processed++
	}

	return result, nil
}
