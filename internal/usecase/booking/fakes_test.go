package booking

import (
	"context"
	"errors"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	domainmentor "github.com/mentorbase/mentor-marketplace/internal/domain/mentor"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
)

// fakeRepo is an in-memory domain.Repository mirroring the transactional
// semantics of the GORM implementation closely enough for use case tests.
type fakeRepo struct {
	bookings map[uint]*models.Booking
	mentors  map[uint]*models.Mentor
	slots    []models.AvailableSlot
	blocked  []models.BlockedSlot
	rules    []models.AvailabilityRule

	verifyErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings: map[uint]*models.Booking{},
		mentors:  map[uint]*models.Mentor{},
	}
}

var _ domain.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return b, nil
}

func (f *fakeRepo) GetBookingForUser(ctx context.Context, id, userID uint) (*models.Booking, error) {
	b, err := f.GetBooking(ctx, id)
	if err != nil || b.UserID != userID {
		return nil, errors.New("record not found")
	}
	return b, nil
}

func (f *fakeRepo) GetBookingForMentor(ctx context.Context, id, mentorID uint) (*models.Booking, error) {
	b, err := f.GetBooking(ctx, id)
	if err != nil || b.MentorID != mentorID {
		return nil, errors.New("record not found")
	}
	return b, nil
}

func (f *fakeRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	if b.ID == 0 {
		b.ID = uint(len(f.bookings) + 1)
	}
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) UpdateBooking(_ context.Context, b *models.Booking) error {
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) GetMentorByID(_ context.Context, id uint) (*models.Mentor, error) {
	m, ok := f.mentors[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return m, nil
}

func (f *fakeRepo) GetMentorForUser(_ context.Context, userID uint) (*models.Mentor, error) {
	for _, m := range f.mentors {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeRepo) VerifyBooking(ctx context.Context, bookingID uint, now time.Time) (*domain.VerifyResult, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}

	b, err := f.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	if err := domain.Verify(b, now); err != nil {
		return nil, err
	}

	m := f.mentors[b.MentorID]
	m.VerifiedBookingsCount++

	result := &domain.VerifyResult{Booking: b, Mentor: m}
	if domainmentor.QualifiesAsTrusted(m.VerifiedBookingsCount) && !m.IsTrusted {
		m.IsTrusted = true
		result.Promoted = true
		for _, other := range f.bookings {
			if other.ID == b.ID || other.MentorID != m.ID {
				continue
			}
			if domain.PayoutReleasable(other, true) {
				other.PayoutStatus = models.PayoutReleased
				other.PayoutReleasedAt = &now
				result.Released++
			}
		}
	}
	return result, nil
}

func (f *fakeRepo) RecordFraudReport(ctx context.Context, bookingID uint, now time.Time, notes string) (*domain.FraudResult, error) {
	b, err := f.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	priorPayout := b.PayoutStatus
	if err := domain.ReportFraud(b, now, notes); err != nil {
		return nil, err
	}

	m := f.mentors[b.MentorID]
	result := &domain.FraudResult{
		Booking:    b,
		Mentor:     m,
		AutoRefund: !m.IsTrusted && priorPayout == models.PayoutHeld,
	}
	if !result.AutoRefund {
		m.Flagged = true
		m.FlagReason = "fraud report pending manual review"
	}

	for _, other := range f.bookings {
		if other.MentorID == m.ID && other.IsFraudReported {
			result.ReportCount++
		}
	}
	if result.ReportCount >= domainmentor.FraudDeactivationThreshold {
		m.IsActive = false
		result.Deactivated = true
	}
	return result, nil
}

func (f *fakeRepo) MarkPayoutRefunded(ctx context.Context, bookingID uint, now time.Time) error {
	b, err := f.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	b.PayoutStatus = models.PayoutRefunded
	return nil
}

func (f *fakeRepo) CancelUnpaidBefore(_ context.Context, cutoff time.Time, reason string) (int64, error) {
	var n int64
	for _, b := range f.bookings {
		if b.Status == string(domain.StatusPending) && b.StripePaidAt == nil && b.CreatedAt.Before(cutoff) {
			b.Status = string(domain.StatusCancelled)
			b.CancellationReason = reason
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListReminderCandidates(_ context.Context, windowStart, windowEnd time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status != string(domain.StatusConfirmed) || b.ReminderSentAt != nil || b.ScheduledAt == nil {
			continue
		}
		end := b.SessionEnd()
		if !end.Before(windowStart) && !end.After(windowEnd) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkReminderSent(ctx context.Context, bookingID uint, now time.Time) error {
	b, err := f.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.ReminderSentAt != nil {
		return httperr.ErrBusiness("reminder_already_sent")
	}
	b.ReminderSentAt = &now
	return nil
}

func (f *fakeRepo) ListAutoConfirmDue(_ context.Context, now time.Time, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status != string(domain.StatusCompleted) || b.IsVerified || b.IsFraudReported {
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

func (f *fakeRepo) ListReleasablePayouts(_ context.Context, limit int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		m := f.mentors[b.MentorID]
		if m != nil && domain.PayoutReleasable(b, m.IsTrusted) {
			out = append(out, *b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) ReleasePayout(ctx context.Context, bookingID uint, now time.Time) error {
	b, err := f.GetBooking(ctx, bookingID)
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

func (f *fakeRepo) ListAvailableSlots(_ context.Context, mentorID uint, from, to time.Time) ([]models.AvailableSlot, error) {
	var out []models.AvailableSlot
	for _, s := range f.slots {
		if s.MentorID == mentorID && !s.StartsAt.Before(from) && s.StartsAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBlockedSlots(_ context.Context, mentorID uint, from, to time.Time) ([]models.BlockedSlot, error) {
	var out []models.BlockedSlot
	for _, b := range f.blocked {
		if b.MentorID == mentorID && b.StartsAt.Before(to) && b.EndsAt.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActiveRules(_ context.Context, mentorID uint) ([]models.AvailabilityRule, error) {
	var out []models.AvailabilityRule
	for _, r := range f.rules {
		if r.MentorID == mentorID && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeProcessor records money movement calls.
type fakeProcessor struct {
	checkouts       int
	payouts         []uint
	refunds         []string
	scheduleUpdates []string

	refundErr error
	payoutErr error
}

var _ payments.Processor = (*fakeProcessor)(nil)

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, b *models.Booking, _ *models.Mentor, _ string) (*payments.CheckoutSession, error) {
	f.checkouts++
	return &payments.CheckoutSession{
		ID:              "cs_test",
		URL:             "https://checkout.example/cs_test",
		PaymentIntentID: "pi_test",
	}, nil
}

func (f *fakeProcessor) ProcessBookingPayout(_ context.Context, b *models.Booking, _ *models.Mentor) error {
	if f.payoutErr != nil {
		return f.payoutErr
	}
	f.payouts = append(f.payouts, b.ID)
	return nil
}

func (f *fakeProcessor) UpdatePayoutSchedule(_ context.Context, accountID string, _ bool) error {
	f.scheduleUpdates = append(f.scheduleUpdates, accountID)
	return nil
}

func (f *fakeProcessor) Refund(_ context.Context, paymentIntentID string) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, paymentIntentID)
	return nil
}

func testDispatcher() *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(nil))
}

func testNotifier() *notify.Notifier {
	return notify.New(nil, "http://localhost:8080")
}
