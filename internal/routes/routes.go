package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/iobuilds/print-lanka-sub001/internal/config"
	"github.com/iobuilds/print-lanka-sub001/internal/handlers"
	"github.com/iobuilds/print-lanka-sub001/internal/middleware"
	"github.com/iobuilds/print-lanka-sub001/internal/otp"
	"github.com/iobuilds/print-lanka-sub001/internal/sms"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	dispatcher := sms.NewDispatcher(sms.NewGormConfigSource(db), sms.NewGormRecordStore(db))

	sessions := otp.NewGormSessionRepository(db)
	accounts := otp.NewGormAccountDirectory(db)
	otpService := otp.NewService(sessions, accounts, sms.CodeNotifier{Dispatcher: dispatcher})
	resetCoordinator := otp.NewResetCoordinator(sessions, accounts, otp.NewGormPasswordUpdater(db))

	authHandler := handlers.NewAuthHandler(db, cfg, otpService)
	otpHandler := handlers.NewOTPHandler(otpService, resetCoordinator)
	smsHandler := handlers.NewSMSHandler(db, dispatcher, cfg)
	orderHandler := handlers.NewOrderHandler(db, dispatcher, cfg)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", otpHandler.ResetPassword)

	// OTP routes
	otpGroup := api.Group("/otp")
	otpGroup.Post("/issue", otpHandler.IssueOTP)
	otpGroup.Post("/verify", otpHandler.VerifyOTP)

	// Notification routes
	notifications := api.Group("/notifications")
	notifications.Post("/sms", smsHandler.SendSMS)
	notifications.Post("/order", smsHandler.SendOrderNotification)
	notifications.Get("/balance", smsHandler.SMSBalance)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Get("/admin/sms-config", adminHandler.GetSMSConfig)
	protected.Put("/admin/sms-config", adminHandler.PutSMSConfig)
}
