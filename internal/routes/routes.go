package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorbase/mentor-marketplace/internal/audit"
	"github.com/mentorbase/mentor-marketplace/internal/cache"
	"github.com/mentorbase/mentor-marketplace/internal/config"
	"github.com/mentorbase/mentor-marketplace/internal/handlers"
	infraRepo "github.com/mentorbase/mentor-marketplace/internal/infra/repository"
	"github.com/mentorbase/mentor-marketplace/internal/jobs"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/notify"
	"github.com/mentorbase/mentor-marketplace/internal/payments"
	"github.com/mentorbase/mentor-marketplace/internal/storage"
	ucBooking "github.com/mentorbase/mentor-marketplace/internal/usecase/booking"
)

const calendarCacheTTL = 5 * time.Minute

// RegisterRoutes wires the whole HTTP surface. The returned sweeper backs
// the cron endpoints and, optionally, the in-process runner.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) *jobs.Sweeper {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	notifier := notify.New(db, cfg.BaseURL)

	paymentProcessor := payments.NewStripeProcessor(cfg.StripeSecretKey, cfg.BaseURL)

	rdb := cache.NewClient(cfg)
	sweepLock := cache.NewSweepLock(rdb)
	calendarCache := cache.NewCalendarCache(rdb, calendarCacheTTL)

	var objectStorage *storage.S3Storage
	if cfg.S3Bucket != "" {
		objectStorage = storage.NewS3Storage(cfg)
	}

	// ======================================================
	// USE CASES - BOOKINGS
	// ======================================================
	checkoutUC := ucBooking.NewCreateCheckout(bookingRepo, paymentProcessor, auditDispatcher)
	cancelUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher, notifier)
	rescheduleUC := ucBooking.NewRescheduleBooking(bookingRepo, auditDispatcher)
	completeUC := ucBooking.NewCompleteBooking(bookingRepo, auditDispatcher)
	mentorConfirmUC := ucBooking.NewMentorConfirm(bookingRepo, auditDispatcher, notifier)
	verifyUC := ucBooking.NewVerifyBooking(bookingRepo, paymentProcessor, auditDispatcher, notifier)
	reportFraudUC := ucBooking.NewReportFraud(bookingRepo, paymentProcessor, auditDispatcher, notifier)
	studentConfirmUC := ucBooking.NewStudentConfirm(verifyUC, reportFraudUC)
	calendarUC := ucBooking.NewAvailabilityCalendar(bookingRepo, calendarCache)

	sweeper := jobs.NewSweeper(bookingRepo, paymentProcessor, notifier, verifyUC, sweepLock)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	mentorHandler := handlers.NewMentorHandler(db, objectStorage, auditDispatcher)
	applicationHandler := handlers.NewApplicationHandler(db, auditDispatcher)
	availabilityHandler := handlers.NewAvailabilityHandler(db, calendarUC)
	planHandler := handlers.NewPlanHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	savedMentorHandler := handlers.NewSavedMentorHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)

	bookingHandler := handlers.NewBookingHandler(
		db,
		checkoutUC,
		cancelUC,
		rescheduleUC,
		completeUC,
		mentorConfirmUC,
		studentConfirmUC,
		verifyUC,
		reportFraudUC,
	)

	adminHandler := handlers.NewAdminHandler(db, bookingRepo, paymentProcessor, notifier, auditDispatcher)
	cronHandler := handlers.NewCronHandler(sweeper)
	webhookHandler := handlers.NewWebhookHandler(db, cfg, notifier)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/mentors", mentorHandler.List)
		api.GET("/mentors/:id", mentorHandler.Get)
		api.GET("/mentors/:id/availability-calendar", availabilityHandler.Calendar)
		api.GET("/mentors/:id/slots", availabilityHandler.ListSlots)
		api.GET("/mentors/:id/reviews", reviewHandler.ListForMentor)
		api.GET("/mentors/:id/plans", planHandler.ListForMentor)

		api.POST("/webhooks/stripe", webhookHandler.HandleStripe)

		// ------------------------------
		// CRON (shared-secret)
		// ------------------------------
		cron := api.Group("/cron")
		cron.Use(middleware.CronAuthMiddleware(cfg))
		{
			cron.GET("/cancel-unpaid-bookings", cronHandler.CancelUnpaid)
			cron.GET("/completion-reminders", cronHandler.CompletionReminders)
			cron.GET("/process-payouts", cronHandler.ProcessPayouts)
		}

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me/settings", meHandler.UpdateSettings)
			secured.GET("/me/onboarding", meHandler.OnboardingStep)

			secured.POST("/applications", applicationHandler.Submit)
			secured.GET("/me/applications", applicationHandler.Mine)

			// ------------------------------
			// BOOKINGS (learner side)
			// ------------------------------
			secured.POST("/bookings/checkout", bookingHandler.CreateCheckout)
			secured.GET("/me/bookings", bookingHandler.ListMine)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.POST("/bookings/:id/cancel", bookingHandler.Cancel)
			secured.POST("/bookings/:id/reschedule", bookingHandler.Reschedule)
			secured.POST("/bookings/:id/complete", bookingHandler.Complete)
			secured.POST("/bookings/:id/student-confirm", bookingHandler.StudentConfirm)
			secured.POST("/bookings/:id/verify", bookingHandler.Verify)
			secured.POST("/bookings/:id/report-fraud", bookingHandler.ReportFraud)

			secured.POST("/reviews", reviewHandler.Create)

			secured.GET("/me/saved-mentors", savedMentorHandler.List)
			secured.POST("/saved-mentors/:id", savedMentorHandler.Save)
			secured.DELETE("/saved-mentors/:id", savedMentorHandler.Unsave)

			secured.GET("/me/notifications", notificationHandler.List)
			secured.PATCH("/me/notifications/read-all", notificationHandler.MarkAllRead)
			secured.PATCH("/me/notifications/:id/read", notificationHandler.MarkRead)
			secured.DELETE("/me/notifications/:id", notificationHandler.Delete)

			// ------------------------------
			// MENTOR AREA
			// ------------------------------
			secured.POST("/me/mentor", mentorHandler.CreateProfile)
			secured.PATCH("/me/mentor", mentorHandler.UpdateProfile)
			secured.POST("/me/mentor/avatar", mentorHandler.UploadAvatar)

			secured.GET("/me/mentor/bookings", bookingHandler.ListForMentor)
			secured.PATCH("/me/mentor/bookings/:id/confirm", bookingHandler.MentorConfirm)
			secured.DELETE("/me/mentor/bookings/:id", bookingHandler.MentorDelete)

			secured.GET("/me/mentor/availability-rules", availabilityHandler.ListRules)
			secured.POST("/me/mentor/availability-rules", availabilityHandler.CreateRule)
			secured.DELETE("/me/mentor/availability-rules/:id", availabilityHandler.DeleteRule)
			secured.POST("/me/mentor/blocked-slots", availabilityHandler.CreateBlockedSlot)
			secured.DELETE("/me/mentor/blocked-slots/:id", availabilityHandler.DeleteBlockedSlot)
			secured.POST("/me/mentor/slots", availabilityHandler.CreateSlot)
			secured.DELETE("/me/mentor/slots/:id", availabilityHandler.DeleteSlot)

			secured.POST("/me/mentor/plans", planHandler.Create)
			secured.PATCH("/me/mentor/plans/:id", planHandler.Update)
			secured.DELETE("/me/mentor/plans/:id", planHandler.Deactivate)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/applications", adminHandler.ListApplications)
				admin.PATCH("/applications/:id/approve", adminHandler.ApproveApplication)
				admin.PATCH("/applications/:id/reject", adminHandler.RejectApplication)

				admin.PATCH("/mentors/:id/flag", adminHandler.FlagMentor)
				admin.PATCH("/mentors/:id/unflag", adminHandler.UnflagMentor)
				admin.PATCH("/mentors/:id/active", adminHandler.SetMentorActive)
				admin.DELETE("/mentors/:id", adminHandler.DeleteMentor)

				admin.GET("/fraud-holds", adminHandler.ListFraudHolds)
				admin.PATCH("/fraud-holds/:id", adminHandler.ResolveHold)

				admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			}
		}
	}

	return sweeper
}
