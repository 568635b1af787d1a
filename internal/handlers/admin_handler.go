package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
)

type AdminHandler struct {
	db       *gorm.DB
	repo     domain.Repository
	payments payments.Processor
	notifier *notify.Notifier
	audit    *audit.Dispatcher
}

func NewAdminHandler(
	db *gorm.DB,
	repo domain.Repository,
	proc payments.Processor,
	notifier *notify.Notifier,
	dispatcher *audit.Dispatcher,
) *AdminHandler {
	return &AdminHandler{
		db:       db,
		repo:     repo,
		payments: proc,
		notifier: notifier,
		audit:    dispatcher,
	}
}

// --------- Applications ---------

func (h *AdminHandler) ListApplications(c *gin.Context) {
	status := c.DefaultQuery("status", models.ApplicationPending)

	var apps []models.Application
	err := h.db.Preload("User").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&apps).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_applications", "Could not list applications.")
		return
	}

	httpresp.List(c, apps)
}

func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	h.reviewApplication(c, models.ApplicationApproved)
}

func (h *AdminHandler) RejectApplication(c *gin.Context) {
	h.reviewApplication(c, models.ApplicationRejected)
}

func (h *AdminHandler) reviewApplication(c *gin.Context, newStatus string) {
	adminID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var app models.Application
	if err := h.db.First(&app, id).Error; err != nil {
		httperr.NotFound(c, "application_not_found", "Application not found.")
		return
	}
	if app.Status != models.ApplicationPending {
		httperr.BadRequest(c, "application_already_reviewed", "Application was already reviewed.")
		return
	}

	now := time.Now().UTC()
	app.Status = newStatus
	app.ReviewedBy = &adminID
	app.ReviewedAt = &now

	if err := h.db.Save(&app).Error; err != nil {
		httperr.Internal(c, "failed_to_update_application", "Could not update the application.")
		return
	}

	h.notifier.ApplicationStatus(app.UserID, newStatus == models.ApplicationApproved)
	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "application_" + newStatus,
		Entity:   "application",
		EntityID: &app.ID,
	})

	httpresp.OK(c, app)
}

// --------- Mentor moderation ---------

type FlagMentorRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *AdminHandler) FlagMentor(c *gin.Context) {
	adminID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req FlagMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	res := h.db.Model(&models.Mentor{}).
		Where("id = ?", id).
		Updates(map[string]any{"flagged": true, "flag_reason": req.Reason})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_flag_mentor", "Could not flag the mentor.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "mentor_not_found", "Mentor not found.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "mentor_flagged",
		Entity:   "mentor",
		EntityID: &id,
		Metadata: gin.H{"reason": req.Reason},
	})

	httpresp.OK(c, gin.H{"flagged": true})
}

func (h *AdminHandler) UnflagMentor(c *gin.Context) {
	adminID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.Model(&models.Mentor{}).
		Where("id = ?", id).
		Updates(map[string]any{"flagged": false, "flag_reason": ""})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_unflag_mentor", "Could not unflag the mentor.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "mentor_not_found", "Mentor not found.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "mentor_unflagged",
		Entity:   "mentor",
		EntityID: &id,
	})

	httpresp.OK(c, gin.H{"flagged": false})
}

func (h *AdminHandler) SetMentorActive(c *gin.Context) {
	adminID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	active := c.Query("active") != "false"

	res := h.db.Model(&models.Mentor{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_mentor", "Could not update the mentor.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "mentor_not_found", "Mentor not found.")
		return
	}

	action := "mentor_deactivated"
	if active {
		action = "mentor_reactivated"
	}
	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   action,
		Entity:   "mentor",
		EntityID: &id,
	})

	httpresp.OK(c, gin.H{"is_active": active})
}

// DeleteMentor permanently removes a mentor and their catalogue data. Refused
// while the mentor still has open bookings or payouts sitting in escrow.
func (h *AdminHandler) DeleteMentor(c *gin.Context) {
	adminID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var mentor models.Mentor
	if err := h.db.First(&mentor, id).Error; err != nil {
		httperr.NotFound(c, "mentor_not_found", "Mentor not found.")
		return
	}

	var open int64
	err := h.db.Model(&models.Booking{}).
		Where("mentor_id = ?", id).
		Where("status NOT IN ? OR payout_status = ?",
			[]string{string(domain.StatusCompleted), string(domain.StatusCancelled), string(domain.StatusRefunded)},
			models.PayoutHeld).
		Count(&open).Error
	if err != nil {
		httperr.Internal(c, "failed_to_delete_mentor", "Could not delete the mentor.")
		return
	}
	if open > 0 {
		httperr.BadRequest(c, "mentor_has_open_bookings", "The mentor still has open bookings or held payouts.")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&models.AvailabilityRule{}, &models.BlockedSlot{}, &models.AvailableSlot{},
			&models.SubscriptionPlan{}, &models.SavedMentor{}, &models.Review{},
		} {
			if err := tx.Where("mentor_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", mentor.UserID).
			Update("role", models.RoleLearner).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Mentor{}, id).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_delete_mentor", "Could not delete the mentor.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "mentor_deleted",
		Entity:   "mentor",
		EntityID: &id,
	})

	httpresp.OK(c, gin.H{"deleted": true})
}

// --------- Escrow review ---------

// ListFraudHolds returns fraud-reported bookings whose payout is still in
// escrow and needs a manual decision.
func (h *AdminHandler) ListFraudHolds(c *gin.Context) {
	var bookings []models.Booking
	err := h.db.Preload("Mentor").Preload("User").
		Where("is_fraud_reported = ? AND payout_status = ?", true, models.PayoutHeld).
		Order("fraud_reported_at ASC").
		Find(&bookings).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_holds", "Could not list held payouts.")
		return
	}

	httpresp.List(c, bookings)
}

type ResolveHoldRequest struct {
	Resolution string `json:"resolution" binding:"required,oneof=refund release"`
}

// ResolveHold settles a fraud-held payout: "refund" sends the money back to
// the learner, "release" pays the mentor out despite the report.
func (h *AdminHandler) ResolveHold(c *gin.Context) {
	adminID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req ResolveHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.repo.GetBooking(c.Request.Context(), id)
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}
	if !b.IsFraudReported || b.PayoutStatus != models.PayoutHeld {
		httperr.BadRequest(c, "not_held", "The booking has no payout awaiting review.")
		return
	}

	now := time.Now().UTC()
	ctx := c.Request.Context()

	switch req.Resolution {
	case "refund":
		if b.StripePaymentIntentID != "" {
			if err := h.payments.Refund(ctx, b.StripePaymentIntentID); err != nil {
				httperr.Internal(c, "refund_failed", "The payment provider rejected the refund.")
				return
			}
		}
		if err := h.repo.MarkPayoutRefunded(ctx, b.ID, now); err != nil {
			httperr.Internal(c, "failed_to_update_booking", "Could not record the refund.")
			return
		}
		h.notifier.BookingCancelled(b.UserID, b.ID, "refunded after review")

	case "release":
		if err := h.repo.ReleasePayout(ctx, b.ID, now); err != nil {
			writeError(c, err, "failed_to_release_payout", "Could not release the payout.")
			return
		}
		m, err := h.repo.GetMentorByID(ctx, b.MentorID)
		if err == nil {
			if err := h.payments.ProcessBookingPayout(ctx, b, m); err == nil {
				h.notifier.PayoutReleased(m.UserID, b.ID)
			}
		}
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "fraud_hold_" + req.Resolution,
		Entity:   "booking",
		EntityID: &b.ID,
	})

	httpresp.OK(c, gin.H{"resolution": req.Resolution})
}

// --------- Audit trail ---------

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	q := h.db.Model(&models.AuditLog{})
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count log entries.")
		return
	}

	var logs []models.AuditLog
	err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Could not list log entries.")
		return
	}

	httpresp.OK(c, gin.H{
		"logs":     logs,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
