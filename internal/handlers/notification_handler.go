package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	q := h.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(100)
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}

	var notifs []models.Notification
	if err := q.Find(&notifs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_notifications", "Could not list notifications.")
		return
	}

	var unread int64
	h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread)

	httpresp.OK(c, gin.H{
		"notifications": notifs,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	now := time.Now().UTC()
	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_notification", "Could not update the notification.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "notification_not_found", "Notification not found.")
		return
	}

	httpresp.OK(c, gin.H{"read": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	now := time.Now().UTC()
	err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error
	if err != nil {
		httperr.Internal(c, "failed_to_update_notifications", "Could not update notifications.")
		return
	}

	httpresp.OK(c, gin.H{"read": true})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_notification", "Could not delete the notification.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "notification_not_found", "Notification not found.")
		return
	}

	httpresp.OK(c, gin.H{"deleted": true})
}
