package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

type ReviewHandler struct {
	db *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

type CreateReviewRequest struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=1000"`
}

// Create stores a review for a verified booking and folds the rating into
// the mentor's aggregate. Only the learner who verified may review, once.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var b models.Booking
	err := h.db.Where("id = ? AND user_id = ?", req.BookingID, userID).First(&b).Error
	if err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	if !b.IsVerified {
		httperr.BadRequest(c, "booking_not_verified", "Only verified bookings can be reviewed.")
		return
	}

	var count int64
	h.db.Model(&models.Review{}).Where("booking_id = ?", b.ID).Count(&count)
	if count > 0 {
		httperr.Conflict(c, "review_exists", "This booking was already reviewed.")
		return
	}

	review := models.Review{
		BookingID: b.ID,
		UserID:    userID,
		MentorID:  b.MentorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var m models.Mentor
		if err := tx.First(&m, b.MentorID).Error; err != nil {
			return err
		}

		total := m.RatingAvg*float64(m.RatingCount) + float64(req.Rating)
		m.RatingCount++
		m.RatingAvg = total / float64(m.RatingCount)

		return tx.Save(&m).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_create_review", "Could not save the review.")
		return
	}

	httpresp.Created(c, review)
}

// ListForMentor is the public review feed of one mentor.
func (h *ReviewHandler) ListForMentor(c *gin.Context) {
	mentorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var reviews []models.Review
	err := h.db.
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Limit(50).
		Find(&reviews).Error
	if err != nil {
		httperr.Internal(c, "failed_to_list_reviews", "Could not list reviews.")
		return
	}

	httpresp.List(c, reviews)
}
