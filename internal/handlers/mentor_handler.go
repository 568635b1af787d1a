package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/imageproc"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/storage"
	"github.com/mentorbase/mentor-marketplace/internal/timezone"
)

const maxAvatarBytes = 5 << 20

type MentorHandler struct {
	db      *gorm.DB
	storage *storage.S3Storage
	audit   *audit.Dispatcher
}

func NewMentorHandler(db *gorm.DB, st *storage.S3Storage, dispatcher *audit.Dispatcher) *MentorHandler {
	return &MentorHandler{db: db, storage: st, audit: dispatcher}
}

// --------- Public catalogue ---------

func (h *MentorHandler) List(c *gin.Context) {
	q := h.db.Where("is_active = ?", true)

	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if c.Query("trusted") == "true" {
		q = q.Where("is_trusted = ?", true)
	}

	// trusted mentors float to the top of the catalogue
	var mentors []models.Mentor
	err := q.Order("is_trusted DESC, rating_avg DESC, rating_count DESC").Find(&mentors).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_mentors", "Could not list mentors.")
		return
	}

	httpresp.List(c, mentors)
}

func (h *MentorHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var m models.Mentor
	err := h.db.Where("id = ? AND is_active = ?", id, true).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "mentor_not_found", "Mentor not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_mentor", "Could not load the mentor.")
		return
	}

	httpresp.OK(c, m)
}

// --------- Profile management ---------

type MentorProfileRequest struct {
	Name             string `json:"name" binding:"required"`
	Tagline          string `json:"tagline"`
	Bio              string `json:"bio"`
	OfferType        string `json:"offer_type" binding:"required,oneof=access time both"`
	AccessPriceCents int64  `json:"access_price_cents"`
	HourlyRateCents  int64  `json:"hourly_rate_cents"`
	Timezone         string `json:"timezone"`
}

// CreateProfile sets up the mentor profile. Gated on an approved
// application; the category comes from the application topic.
func (h *MentorHandler) CreateProfile(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req MentorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var app models.Application
	err := h.db.
		Where("user_id = ? AND status = ?", userID, models.ApplicationApproved).
		Order("created_at DESC").
		First(&app).Error
	if err != nil {
		httperr.Forbidden(c, "application_not_approved", "An approved mentor application is required.")
		return
	}

	var count int64
	h.db.Model(&models.Mentor{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		httperr.Conflict(c, "mentor_already_exists", "A mentor profile already exists.")
		return
	}

	tz := req.Timezone
	if !timezone.IsValid(tz) {
		tz = timezone.DefaultTimezone
	}

	m := models.Mentor{
		UserID:           userID,
		Name:             req.Name,
		Category:         app.Category,
		Tagline:          req.Tagline,
		Bio:              req.Bio,
		OfferType:        req.OfferType,
		AccessPriceCents: req.AccessPriceCents,
		HourlyRateCents:  req.HourlyRateCents,
		Timezone:         tz,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("role", models.RoleMentor).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_create_mentor", "Could not create the profile.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "mentor_profile_created",
		Entity:   "mentor",
		EntityID: &m.ID,
	})
	httpresp.Created(c, m)
}

func (h *MentorHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req MentorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var m models.Mentor
	if err := h.db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		httperr.NotFound(c, "mentor_not_found", "Mentor profile not found.")
		return
	}

	m.Name = req.Name
	m.Tagline = req.Tagline
	m.Bio = req.Bio
	m.OfferType = req.OfferType
	m.AccessPriceCents = req.AccessPriceCents
	m.HourlyRateCents = req.HourlyRateCents
	if timezone.IsValid(req.Timezone) {
		m.Timezone = req.Timezone
	}

	if err := h.db.Save(&m).Error; err != nil {
		httperr.Internal(c, "failed_to_update_mentor", "Could not save the profile.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "mentor_profile_updated",
		Entity:   "mentor",
		EntityID: &m.ID,
	})
	httpresp.OK(c, m)
}

// UploadAvatar resizes the uploaded image to a webp avatar plus a small
// thumbnail and stores both on object storage.
func (h *MentorHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	if h.storage == nil {
		httperr.Internal(c, "storage_unavailable", "Object storage is not configured.")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Send the image as the 'avatar' form field.")
		return
	}
	if file.Size > maxAvatarBytes {
		httperr.BadRequest(c, "file_too_large", "Avatar images are limited to 5MB.")
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_file", "Could not read the upload.")
		return
	}
	defer src.Close()

	avatar, err := imageproc.Thumbnail(src, imageproc.AvatarSize)
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "The file is not a readable image.")
		return
	}

	key := fmt.Sprintf("avatars/%d.webp", userID)
	url, err := h.storage.Put(c.Request.Context(), key, avatar, "image/webp")
	if err != nil {
		httperr.Internal(c, "failed_to_upload", "Could not store the avatar.")
		return
	}

	// small thumbnail for listings; re-read the original
	if _, err := src.Seek(0, 0); err == nil {
		if thumb, err := imageproc.Thumbnail(src, imageproc.ThumbnailSize); err == nil {
			thumbKey := fmt.Sprintf("avatars/%d_thumb.webp", userID)
			_, _ = h.storage.Put(c.Request.Context(), thumbKey, thumb, "image/webp")
		}
	}

	user.ImageURL = url
	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Could not save the avatar.")
		return
	}

	httpresp.OK(c, gin.H{"image_url": url})
}
