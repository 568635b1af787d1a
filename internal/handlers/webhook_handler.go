package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/config"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
)

const maxWebhookBody = 64 << 10

// WebhookHandler receives payment provider events. Signature verification
// is the only authentication on this route.
type WebhookHandler struct {
	db       *gorm.DB
	config   *config.Config
	notifier *notify.Notifier
}

func NewWebhookHandler(db *gorm.DB, cfg *config.Config, notifier *notify.Notifier) *WebhookHandler {
	return &WebhookHandler{db: db, config: cfg, notifier: notifier}
}

func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_payload", "Could not read the event body.")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.config.StripeWebhookSecret)
	if err != nil {
		httperr.BadRequest(c, "invalid_signature", "Event signature verification failed.")
		return
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, event)
	case "charge.refunded":
		h.handleChargeRefunded(c, event)
	default:
		// acknowledge everything else so the provider stops retrying
		httpresp.OK(c, gin.H{"received": true})
	}
}

// handleCheckoutCompleted marks the booking paid. ACCESS bookings have no
// session to schedule, so payment confirms them immediately; SESSION
// bookings stay PENDING until the mentor confirms.
func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		httperr.BadRequest(c, "invalid_event", "Malformed checkout session payload.")
		return
	}

	bookingID, err := strconv.ParseUint(session.Metadata["booking_id"], 10, 64)
	if err != nil {
		httperr.BadRequest(c, "missing_booking_id", "The session carries no booking reference.")
		return
	}

	var b models.Booking
	if err := h.db.Preload("Mentor").First(&b, uint(bookingID)).Error; err != nil {
		// booking gone; acknowledge so the event is not retried forever
		log.Printf("webhook: booking %d not found for session %s", bookingID, session.ID)
		httpresp.OK(c, gin.H{"received": true})
		return
	}

	if b.StripePaidAt != nil {
		httpresp.OK(c, gin.H{"received": true})
		return
	}

	now := time.Now().UTC()
	b.StripePaidAt = &now
	if session.PaymentIntent != nil {
		b.StripePaymentIntentID = session.PaymentIntent.ID
	}

	if b.Type == models.BookingTypeAccess && b.Status == string(domain.StatusPending) {
		if err := domain.Confirm(&b, now); err == nil {
			h.notifier.BookingConfirmed(b.UserID, b.ID, b.Mentor.Name)
		}
	}

	if err := h.db.Save(&b).Error; err != nil {
		httperr.Internal(c, "failed_to_update_booking", "Could not record the payment.")
		return
	}

	httpresp.OK(c, gin.H{"received": true})
}

// handleChargeRefunded reflects a provider-side refund. Verified bookings
// keep their state; COMPLETED bookings record the refund in payout_status
// only; PENDING and CONFIRMED bookings move to REFUNDED.
func (h *WebhookHandler) handleChargeRefunded(c *gin.Context, event stripe.Event) {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		httperr.BadRequest(c, "invalid_event", "Malformed charge payload.")
		return
	}
	if charge.PaymentIntent == nil {
		httpresp.OK(c, gin.H{"received": true})
		return
	}

	var b models.Booking
	err := h.db.Where("stripe_payment_intent_id = ?", charge.PaymentIntent.ID).First(&b).Error
	if err != nil {
		httpresp.OK(c, gin.H{"received": true})
		return
	}

	now := time.Now().UTC()
	if err := domain.ApplyRefund(&b, now); err != nil {
		// verified or already refunded; nothing left to record
		httpresp.OK(c, gin.H{"received": true})
		return
	}
	b.UpdatedAt = now

	if err := h.db.Save(&b).Error; err != nil {
		httperr.Internal(c, "failed_to_update_booking", "Could not record the refund.")
		return
	}

	h.notifier.BookingCancelled(b.UserID, b.ID, "payment refunded")
	httpresp.OK(c, gin.H{"received": true})
}
