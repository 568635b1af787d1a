package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// PlanHandler manages the access-pass bundles a mentor publishes on their
// profile page.
type PlanHandler struct {
	db *gorm.DB
}

func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

type PlanRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	PriceCents  int64  `json:"price_cents" binding:"required,min=100"`
}

// ListForMentor is public: the plans shown on a mentor's profile.
func (h *PlanHandler) ListForMentor(c *gin.Context) {
	mentorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var plans []models.SubscriptionPlan
	err := h.db.
		Where("mentor_id = ? AND active = ?", mentorID, true).
		Order("price_cents ASC").
		Find(&plans).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_plans", "Could not list plans.")
		return
	}

	httpresp.List(c, plans)
}

func (h *PlanHandler) Create(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	plan := models.SubscriptionPlan{
		MentorID:    m.ID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Active:      true,
	}
	if err := h.db.Create(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_create_plan", "Could not save the plan.")
		return
	}

	httpresp.Created(c, plan)
}

func (h *PlanHandler) Update(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	res := h.db.Model(&models.SubscriptionPlan{}).
		Where("id = ? AND mentor_id = ?", id, m.ID).
		Updates(map[string]any{
			"name":        req.Name,
			"description": req.Description,
			"price_cents": req.PriceCents,
		})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_plan", "Could not update the plan.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "plan_not_found", "Plan not found.")
		return
	}

	httpresp.OK(c, gin.H{"updated": true})
}

func (h *PlanHandler) Deactivate(c *gin.Context) {
	m, ok := h.ownMentor(c)
	if !ok {
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.Model(&models.SubscriptionPlan{}).
		Where("id = ? AND mentor_id = ?", id, m.ID).
		Update("active", false)
	if res.Error != nil {
		httperr.Internal(c, "failed_to_deactivate_plan", "Could not deactivate the plan.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "plan_not_found", "Plan not found.")
		return
	}

	httpresp.OK(c, gin.H{"active": false})
}

func (h *PlanHandler) ownMentor(c *gin.Context) (*models.Mentor, bool) {
	userID := c.GetUint(middleware.ContextUserID)

	var m models.Mentor
	if err := h.db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		httperr.NotFound(c, "mentor_not_found", "Mentor profile not found.")
		return nil, false
	}
	return &m, true
}
