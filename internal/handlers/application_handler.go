package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	domainmentor "github.com/mentorbase/mentor-marketplace/internal/domain/mentor"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type ApplicationHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewApplicationHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *ApplicationHandler {
	return &ApplicationHandler{db: db, audit: dispatcher}
}

type SubmitApplicationRequest struct {
	Topic      string `json:"topic" binding:"required,min=3,max=255"`
	Motivation string `json:"motivation" binding:"required,min=20"`
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var pending int64
	h.db.Model(&models.Application{}).
		Where("user_id = ? AND status IN ?", userID, []string{models.ApplicationPending, models.ApplicationApproved}).
		Count(&pending)
	if pending > 0 {
		httperr.Conflict(c, "application_exists", "An application is already pending or approved.")
		return
	}

	app := models.Application{
		UserID:     userID,
		Topic:      req.Topic,
		Motivation: req.Motivation,
		Category:   domainmentor.InferCategory(req.Topic),
		Status:     models.ApplicationPending,
	}

	if err := h.db.Create(&app).Error; err != nil {
		httperr.Internal(c, "failed_to_create_application", "Could not submit the application.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "application_submitted",
		Entity:   "application",
		EntityID: &app.ID,
		Metadata: gin.H{"topic": req.Topic},
	})
	httpresp.Created(c, app)
}

func (h *ApplicationHandler) Mine(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var apps []models.Application
	err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_applications", "Could not list applications.")
		return
	}

	httpresp.List(c, apps)
}
