package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type SavedMentorHandler struct {
	db *gorm.DB
}

func NewSavedMentorHandler(db *gorm.DB) *SavedMentorHandler {
	return &SavedMentorHandler{db: db}
}

func (h *SavedMentorHandler) List(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var saved []models.SavedMentor
	err := h.db.Preload("Mentor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_saved", "Could not list saved mentors.")
		return
	}

	httpresp.List(c, saved)
}

func (h *SavedMentorHandler) Save(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	mentorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var m models.Mentor
	if err := h.db.Where("id = ? AND is_active = ?", mentorID, true).First(&m).Error; err != nil {
		httperr.NotFound(c, "mentor_not_found", "Mentor not found.")
		return
	}

	var count int64
	h.db.Model(&models.SavedMentor{}).
		Where("user_id = ? AND mentor_id = ?", userID, mentorID).
		Count(&count)
	if count > 0 {
		httperr.Conflict(c, "already_saved", "Mentor is already saved.")
		return
	}

	saved := models.SavedMentor{UserID: userID, MentorID: mentorID}
	if err := h.db.Create(&saved).Error; err != nil {
		httperr.Internal(c, "failed_to_save_mentor", "Could not save the mentor.")
		return
	}

	httpresp.Created(c, saved)
}

func (h *SavedMentorHandler) Unsave(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	mentorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.Where("user_id = ? AND mentor_id = ?", userID, mentorID).Delete(&models.SavedMentor{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_unsave_mentor", "Could not remove the mentor.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "saved_mentor_not_found", "Mentor is not saved.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}
