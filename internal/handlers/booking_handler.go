package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	ucbooking "github.com/mentorbase/mentor-marketplace/internal/usecase/booking"
)

type BookingHandler struct {
	db             *gorm.DB
	checkout       *ucbooking.CreateCheckout
	cancel         *ucbooking.CancelBooking
	reschedule     *ucbooking.RescheduleBooking
	complete       *ucbooking.CompleteBooking
	mentorConfirm  *ucbooking.MentorConfirm
	studentConfirm *ucbooking.StudentConfirm
	verify         *ucbooking.VerifyBooking
	reportFraud    *ucbooking.ReportFraud
}

func NewBookingHandler(
	db *gorm.DB,
	checkout *ucbooking.CreateCheckout,
	cancel *ucbooking.CancelBooking,
	reschedule *ucbooking.RescheduleBooking,
	complete *ucbooking.CompleteBooking,
	mentorConfirm *ucbooking.MentorConfirm,
	studentConfirm *ucbooking.StudentConfirm,
	verify *ucbooking.VerifyBooking,
	reportFraud *ucbooking.ReportFraud,
) *BookingHandler {
	return &BookingHandler{
		db:             db,
		checkout:       checkout,
		cancel:         cancel,
		reschedule:     reschedule,
		complete:       complete,
		mentorConfirm:  mentorConfirm,
		studentConfirm: studentConfirm,
		verify:         verify,
		reportFraud:    reportFraud,
	}
}

// --------- Requests ---------

type CreateCheckoutRequest struct {
	MentorID        uint   `json:"mentor_id" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=access session"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	ScheduledAt string `json:"scheduled_at" binding:"required"`
}

type CompleteBookingRequest struct {
	SessionHappened bool   `json:"session_happened"`
	Feedback        string `json:"feedback"`
}

type StudentConfirmRequest struct {
	Action string `json:"action" binding:"required,oneof=confirm report_fraud"`
	Notes  string `json:"notes"`
}

type ReportFraudRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// --------- Learner side ---------

func (h *BookingHandler) CreateCheckout(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	out, err := h.checkout.Execute(c.Request.Context(), userID, ucbooking.CreateCheckoutInput{
		MentorID:        req.MentorID,
		Type:            req.Type,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeError(c, err, "failed_to_create_checkout", "Could not start the checkout.")
		return
	}

	httpresp.Created(c, out)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	q := h.db.
		Preload("Mentor").
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Could not list bookings.")
		return
	}

	httpresp.List(c, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var b models.Booking
	err := h.db.Preload("Mentor").Preload("User").First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "booking_not_found", "Booking not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_booking", "Could not load the booking.")
		return
	}

	if b.UserID != userID && b.Mentor.UserID != userID {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.cancel.Execute(c.Request.Context(), userID, id, req.Reason)
	if err != nil {
		writeError(c, err, "failed_to_cancel_booking", "Could not cancel the booking.")
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.reschedule.Execute(c.Request.Context(), userID, id, req.ScheduledAt)
	if err != nil {
		writeError(c, err, "failed_to_reschedule", "Could not reschedule the booking.")
		return
	}

	httpresp.OK(c, b)
}

// Complete records the learner's post-session survey and opens the
// auto-confirm window.
func (h *BookingHandler) Complete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req CompleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.complete.Execute(c.Request.Context(), userID, id, ucbooking.CompleteInput{
		SessionHappened: req.SessionHappened,
		Feedback:        req.Feedback,
	})
	if err != nil {
		writeError(c, err, "failed_to_complete_booking", "Could not complete the booking.")
		return
	}

	httpresp.OK(c, b)
}

// StudentConfirm is the single endpoint behind the post-session prompt:
// confirm releases escrow, report_fraud freezes it.
func (h *BookingHandler) StudentConfirm(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req StudentConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.studentConfirm.Execute(c.Request.Context(), userID, id, ucbooking.StudentConfirmInput{
		Action: req.Action,
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(c, err, "failed_to_confirm_booking", "Could not process the confirmation.")
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Verify(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	result, err := h.verify.Execute(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err, "failed_to_verify_booking", "Could not verify the booking.")
		return
	}

	httpresp.OK(c, gin.H{
		"booking":          result.Booking,
		"mentor_promoted":  result.Promoted,
		"payouts_released": result.Released,
	})
}

func (h *BookingHandler) ReportFraud(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req ReportFraudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	result, err := h.reportFraud.Execute(c.Request.Context(), userID, id, req.Notes)
	if err != nil {
		writeError(c, err, "failed_to_report_fraud", "Could not file the report.")
		return
	}

	httpresp.OK(c, gin.H{
		"booking":            result.Booking,
		"auto_refunded":      result.AutoRefund,
		"mentor_deactivated": result.Deactivated,
	})
}

// --------- Mentor side ---------

func (h *BookingHandler) ListForMentor(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	m, ok := h.mentorForUser(c, userID)
	if !ok {
		return
	}

	q := h.db.
		Preload("User").
		Where("mentor_id = ?", m.ID).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Could not list bookings.")
		return
	}

	httpresp.List(c, bookings)
}

func (h *BookingHandler) MentorConfirm(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	b, err := h.mentorConfirm.Execute(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err, "failed_to_confirm_booking", "Could not confirm the booking.")
		return
	}

	httpresp.OK(c, b)
}

// MentorDelete removes a finished booking from the mentor's history. Only
// terminal bookings can go; live ones must be cancelled first.
func (h *BookingHandler) MentorDelete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	m, ok := h.mentorForUser(c, userID)
	if !ok {
		return
	}

	var b models.Booking
	err := h.db.Where("id = ? AND mentor_id = ?", id, m.ID).First(&b).Error
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	if !domain.IsTerminal(domain.Status(b.Status)) {
		httperr.BadRequest(c, "booking_not_terminal", "Only finished bookings can be deleted.")
		return
	}

	if err := h.db.Delete(&b).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_booking", "Could not delete the booking.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}

func (h *BookingHandler) mentorForUser(c *gin.Context, userID uint) (*models.Mentor, bool) {
	var m models.Mentor
	if err := h.db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		httperr.NotFound(c, "mentor_not_found", "Mentor profile not found.")
		return nil, false
	}
	return &m, true
}
