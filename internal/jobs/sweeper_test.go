package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	"github.com/mentorbase/mentor-marketplace/internal/cache"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	domainmentor "github.com/mentorbase/mentor-marketplace/internal/domain/mentor"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
	ucbooking "github.com/mentorbase/mentor-marketplace/internal/usecase/booking"
)

// memRepo is an in-memory domain.Repository for sweep tests.
type memRepo struct {
	bookings map[uint]*models.Booking
	mentors  map[uint]*models.Mentor
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings: map[uint]*models.Booking{},
		mentors:  map[uint]*models.Mentor{},
	}
}

var _ domain.Repository = (*memRepo)(nil)

func (r *memRepo) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return b, nil
}

func (r *memRepo) GetBookingForUser(ctx context.Context, id, userID uint) (*models.Booking, error) {
	b, err := r.GetBooking(ctx, id)
	if err != nil || b.UserID != userID {
		return nil, errors.New("record not found")
	}
	return b, nil
}

func (r *memRepo) GetBookingForMentor(ctx context.Context, id, mentorID uint) (*models.Booking, error) {
	b, err := r.GetBooking(ctx, id)
	if err != nil || b.MentorID != mentorID {
		return nil, errors.New("record not found")
	}
	return b, nil
}

func (r *memRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *memRepo) UpdateBooking(_ context.Context, b *models.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *memRepo) GetMentorByID(_ context.Context, id uint) (*models.Mentor, error) {
	m, ok := r.mentors[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return m, nil
}

func (r *memRepo) GetMentorForUser(_ context.Context, userID uint) (*models.Mentor, error) {
	for _, m := range r.mentors {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *memRepo) VerifyBooking(ctx context.Context, bookingID uint, now time.Time) (*domain.VerifyResult, error) {
	b, err := r.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	if err := domain.Verify(b, now); err != nil {
		return nil, err
	}

	m := r.mentors[b.MentorID]
	m.VerifiedBookingsCount++

	result := &domain.VerifyResult{Booking: b, Mentor: m}
	if domainmentor.QualifiesAsTrusted(m.VerifiedBookingsCount) && !m.IsTrusted {
		m.IsTrusted = true
		result.Promoted = true
	}
	return result, nil
}

func (r *memRepo) RecordFraudReport(context.Context, uint, time.Time, string) (*domain.FraudResult, error) {
	return nil, errors.New("not used in sweeps")
}

func (r *memRepo) MarkPayoutRefunded(ctx context.Context, bookingID uint, _ time.Time) error {
	b, err := r.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	b.PayoutStatus = models.PayoutRefunded
	return nil
}

func (r *memRepo) CancelUnpaidBefore(_ context.Context, cutoff time.Time, reason string) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.Status == "pending" && b.StripePaidAt == nil && b.CreatedAt.Before(cutoff) {
			b.Status = "cancelled"
			b.CancellationReason = reason
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListReminderCandidates(_ context.Context, windowStart, windowEnd time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status != "confirmed" || b.ReminderSentAt != nil || b.ScheduledAt == nil {
			continue
		}
		end := b.SessionEnd()
		if !end.Before(windowStart) && !end.After(windowEnd) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memRepo) MarkReminderSent(ctx context.Context, bookingID uint, now time.Time) error {
	b, err := r.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.ReminderSentAt != nil {
		return httperr.ErrBusiness("reminder_already_sent")
	}
	b.ReminderSentAt = &now
	return nil
}

func (r *memRepo) ListAutoConfirmDue(_ context.Context, now time.Time, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status != "completed" || b.IsVerified || b.IsFraudReported {
			continue
		}
		if b.AutoConfirmAt != nil && !b.AutoConfirmAt.After(now) {
			out = append(out, *b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) ListReleasablePayouts(_ context.Context, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		m := r.mentors[b.MentorID]
		if m != nil && domain.PayoutReleasable(b, m.IsTrusted) {
			out = append(out, *b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) ReleasePayout(ctx context.Context, bookingID uint, now time.Time) error {
	b, err := r.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.PayoutStatus != models.PayoutHeld {
		return httperr.ErrBusiness("payout_not_held")
	}
	b.PayoutStatus = models.PayoutReleased
	b.PayoutReleasedAt = &now
	return nil
}

func (r *memRepo) ListAvailableSlots(context.Context, uint, time.Time, time.Time) ([]models.AvailableSlot, error) {
	return nil, nil
}

func (r *memRepo) ListBlockedSlots(context.Context, uint, time.Time, time.Time) ([]models.BlockedSlot, error) {
	return nil, nil
}

func (r *memRepo) ListActiveRules(context.Context, uint) ([]models.AvailabilityRule, error) {
	return nil, nil
}

type recordingProcessor struct {
	payouts []uint
}

var _ payments.Processor = (*recordingProcessor)(nil)

func (p *recordingProcessor) CreateCheckoutSession(context.Context, *models.Booking, *models.Mentor, string) (*payments.CheckoutSession, error) {
	return &payments.CheckoutSession{ID: "cs", URL: "https://example/cs"}, nil
}

func (p *recordingProcessor) ProcessBookingPayout(_ context.Context, b *models.Booking, _ *models.Mentor) error {
	p.payouts = append(p.payouts, b.ID)
	return nil
}

func (p *recordingProcessor) UpdatePayoutSchedule(context.Context, string, bool) error { return nil }

func (p *recordingProcessor) Refund(context.Context, string) error { return nil }

func newTestSweeper(repo *memRepo) (*Sweeper, *recordingProcessor) {
	proc := &recordingProcessor{}
	dispatcher := audit.NewDispatcher(audit.New(nil))
	notifier := notify.New(nil, "http://localhost:8080")
	verify := ucbooking.NewVerifyBooking(repo, proc, dispatcher, notifier)
	lock := cache.NewSweepLock(nil)
	return NewSweeper(repo, proc, notifier, verify, lock), proc
}

func TestCancelUnpaid(t *testing.T) {
	repo := newMemRepo()
	now := time.Now().UTC()

	repo.bookings[1] = &models.Booking{ID: 1, Status: "pending", CreatedAt: now.Add(-time.Hour)}
	repo.bookings[2] = &models.Booking{ID: 2, Status: "pending", CreatedAt: now.Add(-5 * time.Minute)}
	paid := now.Add(-time.Hour)
	repo.bookings[3] = &models.Booking{ID: 3, Status: "pending", CreatedAt: now.Add(-2 * time.Hour), StripePaidAt: &paid}

	s, _ := newTestSweeper(repo)

	result, err := s.CancelUnpaid(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Cancelled)
	assert.Equal(t, "cancelled", repo.bookings[1].Status)
	assert.Equal(t, "payment_timeout", repo.bookings[1].CancellationReason)
	assert.Equal(t, "pending", repo.bookings[2].Status, "too young to cancel")
	assert.Equal(t, "pending", repo.bookings[3].Status, "paid bookings are kept")
}

func TestCompletionReminders_SentOnce(t *testing.T) {
	repo := newMemRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, Name: "Dana"}

	start := time.Now().UTC().Add(-2 * time.Hour)
	repo.bookings[1] = &models.Booking{
		ID: 1, UserID: 2, MentorID: 1,
		Type:            models.BookingTypeSession,
		Status:          "confirmed",
		ScheduledAt:     &start,
		DurationMinutes: 60,
	}

	s, _ := newTestSweeper(repo)

	result, err := s.CompletionReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	require.NotNil(t, repo.bookings[1].ReminderSentAt)

	// second run is a no-op thanks to the sent-marker
	result, err = s.CompletionReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}

func TestProcessPayouts_AutoConfirmsLapsedWindow(t *testing.T) {
	repo := newMemRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, IsActive: true}

	due := time.Now().UTC().Add(-time.Hour)
	repo.bookings[1] = &models.Booking{
		ID: 1, UserID: 2, MentorID: 1,
		Type:          models.BookingTypeSession,
		Status:        "completed",
		PayoutStatus:  models.PayoutHeld,
		AutoConfirmAt: &due,
	}

	s, proc := newTestSweeper(repo)

	result, err := s.ProcessPayouts(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Processed, 1)
	assert.True(t, repo.bookings[1].IsVerified)
	assert.Equal(t, models.PayoutReleased, repo.bookings[1].PayoutStatus)
	assert.Contains(t, proc.payouts, uint(1))
}

func TestProcessPayouts_FraudReportedExcluded(t *testing.T) {
	repo := newMemRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, IsTrusted: true}

	due := time.Now().UTC().Add(-time.Hour)
	repo.bookings[1] = &models.Booking{
		ID: 1, UserID: 2, MentorID: 1,
		Status:          "completed",
		PayoutStatus:    models.PayoutHeld,
		AutoConfirmAt:   &due,
		IsFraudReported: true,
	}

	s, proc := newTestSweeper(repo)

	_, err := s.ProcessPayouts(context.Background())
	require.NoError(t, err)

	assert.False(t, repo.bookings[1].IsVerified, "fraud-reported bookings never auto-confirm")
	assert.Equal(t, models.PayoutHeld, repo.bookings[1].PayoutStatus)
	assert.Empty(t, proc.payouts)
}

func TestProcessPayouts_TrustedMentorBackfill(t *testing.T) {
	repo := newMemRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, IsTrusted: true}

	// unverified but held payout for an already-trusted mentor
	repo.bookings[1] = &models.Booking{
		ID: 1, UserID: 2, MentorID: 1,
		Status:       "completed",
		PayoutStatus: models.PayoutHeld,
	}

	s, proc := newTestSweeper(repo)

	result, err := s.ProcessPayouts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, models.PayoutReleased, repo.bookings[1].PayoutStatus)
	assert.Equal(t, []uint{1}, proc.payouts)
}
