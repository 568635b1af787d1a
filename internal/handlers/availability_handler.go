package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	ucbooking "github.com/mentorbase/mentor-marketplace/internal/usecase/booking"
)

type AvailabilityHandler struct {
	db       *gorm.DB
	calendar *ucbooking.AvailabilityCalendar
}

func NewAvailabilityHandler(db *gorm.DB, calendar *ucbooking.AvailabilityCalendar) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, calendar: calendar}
}

// Calendar is the public month view: which dates still have open slots,
// projected in the mentor's timezone.
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	mentorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	cal, err := h.calendar.Execute(c.Request.Context(), mentorID, month)
	if err != nil {
		writeError(c, err, "failed_to_build_calendar", "Could not build the calendar.")
		return
	}

	httpresp.OK(c, cal)
}

// ListSlots returns the published open slots of one mentor, optionally
// narrowed to a single date (YYYY-MM-DD, mentor-local).
func (h *AvailabilityHandler) ListSlots(c *gin.Context) {
	mentorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	q := h.db.
		Where("mentor_id = ? AND booked = ?", mentorID, false).
		Where("starts_at > ?", time.Now().UTC()).
		Order("starts_at ASC")

	var slots []models.AvailableSlot
	if err := q.Find(&slots).Error; err != nil {
		httperr.Internal(c, "failed_to_list_slots", "Could not list slots.")
		return
	}

	httpresp.List(c, slots)
}

// --------- Mentor-side management ---------

type CreateRuleRequest struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type CreateBlockedSlotRequest struct {
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
	Reason   string    `json:"reason"`
}

type CreateSlotRequest struct {
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=15,max=480"`
	IsFree          bool      `json:"is_free"`
}

func (h *AvailabilityHandler) ListRules(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}

	var rules []models.AvailabilityRule
	err := h.db.Where("mentor_id = ?", m.ID).Order("weekday, start_time").Find(&rules).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_rules", "Could not list availability rules.")
		return
	}

	httpresp.List(c, rules)
}

func (h *AvailabilityHandler) CreateRule(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if !validClockTime(req.StartTime) || !validClockTime(req.EndTime) || req.StartTime >= req.EndTime {
		httperr.BadRequest(c, "invalid_time_window", "Times must be HH:MM with start before end.")
		return
	}

	rule := models.AvailabilityRule{
		MentorID:  m.ID,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Active:    true,
	}
	if err := h.db.Create(&rule).Error; err != nil {
		httperr.Internal(c, "failed_to_create_rule", "Could not save the rule.")
		return
	}

	httpresp.Created(c, rule)
}

func (h *AvailabilityHandler) DeleteRule(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.Where("id = ? AND mentor_id = ?", id, m.ID).Delete(&models.AvailabilityRule{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_rule", "Could not delete the rule.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "rule_not_found", "Rule not found.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}

func (h *AvailabilityHandler) CreateBlockedSlot(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}

	var req CreateBlockedSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		httperr.BadRequest(c, "invalid_time_window", "End must be after start.")
		return
	}

	blocked := models.BlockedSlot{
		MentorID: m.ID,
		StartsAt: req.StartsAt.UTC(),
		EndsAt:   req.EndsAt.UTC(),
		Reason:   req.Reason,
	}
	if err := h.db.Create(&blocked).Error; err != nil {
		httperr.Internal(c, "failed_to_create_blocked_slot", "Could not save the block.")
		return
	}

	httpresp.Created(c, blocked)
}

func (h *AvailabilityHandler) DeleteBlockedSlot(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.Where("id = ? AND mentor_id = ?", id, m.ID).Delete(&models.BlockedSlot{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_blocked_slot", "Could not delete the block.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "blocked_slot_not_found", "Block not found.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}

func (h *AvailabilityHandler) CreateSlot(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !req.StartsAt.After(time.Now()) {
		httperr.BadRequest(c, "slot_in_past", "Slots must start in the future.")
		return
	}

	slot := models.AvailableSlot{
		MentorID:        m.ID,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		IsFree:          req.IsFree,
	}
	if err := h.db.Create(&slot).Error; err != nil {
		httperr.Internal(c, "failed_to_create_slot", "Could not save the slot.")
		return
	}

	httpresp.Created(c, slot)
}

func (h *AvailabilityHandler) DeleteSlot(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.
		Where("id = ? AND mentor_id = ? AND booked = ?", id, m.ID, false).
		Delete(&models.AvailableSlot{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_slot", "Could not delete the slot.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "slot_not_found", "Slot not found or already booked.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}

func (h *AvailabilityHandler) ownMentor(c *gin.Context) (*models.Mentor, bool) {
	userID := c.GetUint(middleware.ContextUserID)

	var m models.Mentor
	if err := h.db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		httperr.NotFound(c, "mentor_not_found", "Mentor profile not found.")
		return nil, false
	}
	return &m, true
}

func validClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
