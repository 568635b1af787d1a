package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domainmentor "github.com/mentorbase/mentor-marketplace/internal/domain/mentor"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/timezone"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	payload := gin.H{"user": userPayload(&user)}

	var m models.Mentor
	if err := h.db.Where("user_id = ?", userID).First(&m).Error; err == nil {
		payload["mentor"] = m
		payload["profile_completeness"] = domainmentor.ProfileCompleteness(&m)
	}

	httpresp.OK(c, payload)
}

// OnboardingStep tells the frontend where a would-be mentor is in the funnel.
func (h *MeHandler) OnboardingStep(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var app *models.Application
	var found models.Application
	err := h.db.Where("user_id = ?", userID).Order("created_at DESC").First(&found).Error
	if err == nil {
		app = &found
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.Internal(c, "internal_error", "Could not load onboarding state.")
		return
	}

	var m *models.Mentor
	var mentorRow models.Mentor
	if err := h.db.Where("user_id = ?", userID).First(&mentorRow).Error; err == nil {
		m = &mentorRow
	}

	httpresp.OK(c, gin.H{
		"step":                 domainmentor.OnboardingStep(app, m),
		"profile_completeness": domainmentor.ProfileCompleteness(m),
	})
}

type UpdateSettingsRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}

func (h *MeHandler) UpdateSettings(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone.")
			return
		}
		user.Timezone = *req.Timezone
	}

	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Could not save settings.")
		return
	}

	httpresp.OK(c, userPayload(&user))
}
