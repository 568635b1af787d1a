package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	mentordomain "github.com/mentorbase/mentor-marketplace/internal/domain/mentor"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Booking lookup
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUser(
	ctx context.Context,
	id uint,
	userID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForMentor(
	ctx context.Context,
	id uint,
	mentorID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND mentor_id = ?", id, mentorID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// --------------------------------------------------
// Mentor
// --------------------------------------------------

func (r *BookingGormRepository) GetMentorByID(
	ctx context.Context,
	id uint,
) (*models.Mentor, error) {

	var m models.Mentor
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *BookingGormRepository) GetMentorForUser(
	ctx context.Context,
	userID uint,
) (*models.Mentor, error) {

	var m models.Mentor
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// --------------------------------------------------
// Verification (transactional)
// --------------------------------------------------

// VerifyBooking runs the whole verify sequence in one transaction: the
// mentor row is locked FOR UPDATE before the counter is recomputed, so two
// concurrent verifications for the same mentor serialize instead of losing
// an increment. Promotion at the threshold bulk-releases the mentor's other
// held payouts inside the same transaction.
func (r *BookingGormRepository) VerifyBooking(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) (*domain.VerifyResult, error) {

	var result domain.VerifyResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var b models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, bookingID).Error; err != nil {
			return err
		}

		if err := domain.Verify(&b, now); err != nil {
			return err
		}

		var m models.Mentor
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, b.MentorID).Error; err != nil {
			return err
		}

		newCount := m.VerifiedBookingsCount + 1
		m.VerifiedBookingsCount = newCount

		if mentordomain.QualifiesAsTrusted(newCount) && !m.IsTrusted {
			m.IsTrusted = true
			result.Promoted = true

			// Fraud-disputed escrow stays held for admin review even when
			// the mentor graduates to trusted.
			release := tx.Model(&models.Booking{}).
				Where("mentor_id = ? AND id <> ? AND payout_status = ? AND is_fraud_reported = ?",
					m.ID, b.ID, models.PayoutHeld, false).
				Updates(map[string]any{
					"payout_status":      models.PayoutReleased,
					"payout_released_at": now,
				})
			if release.Error != nil {
				return release.Error
			}
			result.Released = release.RowsAffected
		}

		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		if err := tx.Save(&b).Error; err != nil {
			return err
		}

		result.Booking = &b
		result.Mentor = &m
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordFraudReport records the report and recomputes the mentor's total
// fraud-report count; at two or more the mentor is force-deactivated.
func (r *BookingGormRepository) RecordFraudReport(
	ctx context.Context,
	bookingID uint,
	now time.Time,
	notes string,
) (*domain.FraudResult, error) {

	var result domain.FraudResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var b models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, bookingID).Error; err != nil {
			return err
		}

		priorPayout := b.PayoutStatus

		if err := domain.ReportFraud(&b, now, notes); err != nil {
			return err
		}

		if err := tx.Save(&b).Error; err != nil {
			return err
		}

		var m models.Mentor
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, b.MentorID).Error; err != nil {
			return err
		}

		// Untrusted mentor, payout never left escrow: refund automatically.
		// Anything else goes to manual admin review.
		result.AutoRefund = !m.IsTrusted && priorPayout == models.PayoutHeld
		if !result.AutoRefund {
			m.Flagged = true
			m.FlagReason = "fraud report pending manual review"
		}

		var reportCount int64
		if err := tx.Model(&models.Booking{}).
			Where("mentor_id = ? AND is_fraud_reported = ?", m.ID, true).
			Count(&reportCount).Error; err != nil {
			return err
		}
		result.ReportCount = reportCount

		if reportCount >= mentordomain.FraudDeactivationThreshold && m.IsActive {
			m.IsActive = false
			result.Deactivated = true
		}

		if err := tx.Save(&m).Error; err != nil {
			return err
		}

		result.Booking = &b
		result.Mentor = &m
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *BookingGormRepository) MarkPayoutRefunded(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"payout_status": models.PayoutRefunded,
			"updated_at":    now,
		}).Error
}

// --------------------------------------------------
// Sweeps
// --------------------------------------------------

func (r *BookingGormRepository) CancelUnpaidBefore(
	ctx context.Context,
	cutoff time.Time,
	reason string,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where(
			"status = ? AND stripe_paid_at IS NULL AND created_at < ?",
			string(domain.StatusPending), cutoff,
		).
		Updates(map[string]any{
			"status":              string(domain.StatusCancelled),
			"cancellation_reason": reason,
		})

	return res.RowsAffected, res.Error
}

func (r *BookingGormRepository) ListReminderCandidates(
	ctx context.Context,
	windowStart time.Time,
	windowEnd time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where(
			`status = ? AND type = ? AND reminder_sent_at IS NULL
			 AND scheduled_at + make_interval(mins => duration_minutes) BETWEEN ? AND ?`,
			string(domain.StatusConfirmed), models.BookingTypeSession,
			windowStart, windowEnd,
		).
		Order("scheduled_at ASC").
		Find(&bookings).Error

	return bookings, err
}

func (r *BookingGormRepository) MarkReminderSent(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND reminder_sent_at IS NULL", bookingID).
		Update("reminder_sent_at", now).Error
}

func (r *BookingGormRepository) ListAutoConfirmDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]models.Booking, error) {

	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where(
			`status = ? AND auto_confirm_at < ?
			 AND student_confirmed_at IS NULL AND is_fraud_reported = ?`,
			string(domain.StatusCompleted), now, false,
		).
		Order("auto_confirm_at ASC").
		Limit(limit).
		Find(&bookings).Error

	return bookings, err
}

func (r *BookingGormRepository) ListReleasablePayouts(
	ctx context.Context,
	limit int,
) ([]models.Booking, error) {

	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Joins("JOIN mentors ON mentors.id = bookings.mentor_id").
		Where(
			`bookings.payout_status = ? AND bookings.is_fraud_reported = ?
			 AND (bookings.is_verified = ? OR mentors.is_trusted = ?)`,
			models.PayoutHeld, false, true, true,
		).
		Limit(limit).
		Find(&bookings).Error

	return bookings, err
}

func (r *BookingGormRepository) ReleasePayout(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND payout_status = ?", bookingID, models.PayoutHeld).
		Updates(map[string]any{
			"payout_status":      models.PayoutReleased,
			"payout_released_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("payout_not_held")
	}
	return nil
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

func (r *BookingGormRepository) ListAvailableSlots(
	ctx context.Context,
	mentorID uint,
	from time.Time,
	to time.Time,
) ([]models.AvailableSlot, error) {

	var slots []models.AvailableSlot
	err := r.db.WithContext(ctx).
		Where(
			"mentor_id = ? AND starts_at >= ? AND starts_at < ?",
			mentorID, from, to,
		).
		Order("starts_at ASC").
		Find(&slots).Error

	return slots, err
}

func (r *BookingGormRepository) ListBlockedSlots(
	ctx context.Context,
	mentorID uint,
	from time.Time,
	to time.Time,
) ([]models.BlockedSlot, error) {

	var blocked []models.BlockedSlot
	err := r.db.WithContext(ctx).
		Where(
			"mentor_id = ? AND starts_at < ? AND ends_at > ?",
			mentorID, to, from,
		).
		Find(&blocked).Error

	return blocked, err
}

func (r *BookingGormRepository) ListActiveRules(
	ctx context.Context,
	mentorID uint,
) ([]models.AvailabilityRule, error) {

	var rules []models.AvailabilityRule
	err := r.db.WithContext(ctx).
		Where("mentor_id = ? AND active = ?", mentorID, true).
		Order("weekday ASC, start_time ASC").
		Find(&rules).Error

	return rules, err
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
