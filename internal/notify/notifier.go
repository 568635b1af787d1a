package notify

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// Notifier writes Notification rows off the request path through a buffered
// channel worker. A full queue drops the notification; booking state is
// never coupled to notification delivery.
type Notifier struct {
	db      *gorm.DB
	baseURL string
	queue   chan models.Notification
}

func New(db *gorm.DB, baseURL string) *Notifier {
	n := &Notifier{
		db:      db,
		baseURL: baseURL,
		queue:   make(chan models.Notification, 200),
	}

	go n.worker()
	return n
}

func (n *Notifier) worker() {
	for notif := range n.queue {
		if n.db == nil {
			continue
		}
		if err := n.db.Create(&notif).Error; err != nil {
			log.Println("notify error:", err)
		}
	}
}

func (n *Notifier) push(notif models.Notification) {
	select {
	case n.queue <- notif:
	default:
		log.Println("notify queue full, dropping notification")
	}
}

func (n *Notifier) bookingLink(bookingID uint) string {
	return fmt.Sprintf("%s/bookings/%d", n.baseURL, bookingID)
}

// --------- Factory methods ---------

func (n *Notifier) BookingConfirmed(userID, bookingID uint, mentorName string) {
	n.push(models.Notification{
		UserID:  userID,
		Type:    models.NotifyBookingConfirmed,
		Title:   "Booking confirmed",
		Message: fmt.Sprintf("Your booking with %s is confirmed.", mentorName),
		Link:    n.bookingLink(bookingID),
	})
}

func (n *Notifier) BookingCancelled(userID, bookingID uint, reason string) {
	n.push(models.Notification{
		UserID:  userID,
		Type:    models.NotifyBookingCancelled,
		Title:   "Booking cancelled",
		Message: reason,
		Link:    n.bookingLink(bookingID),
	})
}

func (n *Notifier) BookingVerified(mentorUserID, bookingID uint) {
	n.push(models.Notification{
		UserID:  mentorUserID,
		Type:    models.NotifyBookingVerified,
		Title:   "Session verified",
		Message: "A learner verified your session. The payout is on its way.",
		Link:    n.bookingLink(bookingID),
	})
}

func (n *Notifier) PayoutReleased(mentorUserID, bookingID uint) {
	n.push(models.Notification{
		UserID:  mentorUserID,
		Type:    models.NotifyPayoutReleased,
		Title:   "Payout released",
		Message: "A held payout has been released.",
		Link:    n.bookingLink(bookingID),
	})
}

func (n *Notifier) FraudReported(mentorUserID, bookingID uint) {
	n.push(models.Notification{
		UserID:  mentorUserID,
		Type:    models.NotifyFraudReported,
		Title:   "Booking disputed",
		Message: "A learner reported a problem with a completed booking.",
		Link:    n.bookingLink(bookingID),
	})
}

func (n *Notifier) CompletionReminder(userID, bookingID uint, mentorName string) {
	n.push(models.Notification{
		UserID:  userID,
		Type:    models.NotifyCompletionPending,
		Title:   "How was your session?",
		Message: fmt.Sprintf("Confirm your session with %s so the mentor can be paid.", mentorName),
		Link:    n.bookingLink(bookingID),
	})
}

func (n *Notifier) MentorTrusted(mentorUserID uint) {
	n.push(models.Notification{
		UserID:  mentorUserID,
		Type:    models.NotifyMentorTrusted,
		Title:   "You are now a trusted mentor",
		Message: "Held payouts were released and future payouts switch to daily.",
	})
}

func (n *Notifier) ApplicationStatus(userID uint, approved bool) {
	msg := "Your mentor application was approved. Set up your profile to start taking bookings."
	if !approved {
		msg = "Your mentor application was not approved this time."
	}
	n.push(models.Notification{
		UserID:  userID,
		Type:    models.NotifyApplicationStatus,
		Title:   "Application update",
		Message: msg,
	})
}
