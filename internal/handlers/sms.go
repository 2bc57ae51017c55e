package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iobuilds/print-lanka-sub001/internal/config"
	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/sms"
)

// SMSHandler exposes the notification endpoints.
type SMSHandler struct {
	db         *gorm.DB
	dispatcher *sms.Dispatcher
	cfg        *config.Config
}

// NewSMSHandler constructs an SMSHandler.
func NewSMSHandler(db *gorm.DB, dispatcher *sms.Dispatcher, cfg *config.Config) *SMSHandler {
	return &SMSHandler{db: db, dispatcher: dispatcher, cfg: cfg}
}

type sendSMSRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// SendSMS dispatches one SMS through the configured provider.
func (h *SMSHandler) SendSMS(c *fiber.Ctx) error {
	var req sendSMSRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Message == "" || req.UserID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone, message and user_id are required")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}

	send := sms.SendRequest{Phone: req.Phone, Message: req.Message, UserID: &userID}
	if req.OrderID != "" {
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order_id")
		}
		send.OrderID = &orderID
	}

	result, err := h.dispatcher.Send(c.Context(), send)
	if err != nil {
		if errors.Is(err, sms.ErrNotConfigured) {
			return fiber.NewError(fiber.StatusBadRequest, "SMS is not configured")
		}
		return err
	}

	message := "SMS sent"
	if !result.Success {
		message = result.Detail
		if message == "" {
			message = "SMS dispatch failed"
		}
	}

	return c.JSON(fiber.Map{
		"success": result.Success,
		"message": message,
		"status":  result.Status,
	})
}

type orderNotificationRequest struct {
	OrderID          string `json:"order_id"`
	OrderType        string `json:"order_type"`
	NotificationType string `json:"notification_type"`
}

// SendOrderNotification resolves the order and customer and dispatches the
// admin and/or customer messages.
func (h *SMSHandler) SendOrderNotification(c *fiber.Ctx) error {
	var req orderNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OrderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "order_id is required")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order_id")
	}

	configured, err := h.dispatcher.Configured(c.Context())
	if err != nil {
		return err
	}
	if !configured {
		return fiber.NewError(fiber.StatusBadRequest, "SMS is not configured")
	}

	notificationType := req.NotificationType
	if notificationType == "" {
		notificationType = sms.NotifyAll
	}

	query := h.db.WithContext(c.Context()).Preload("User")
	if req.OrderType != "" {
		query = query.Where("order_type = ?", req.OrderType)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	notification := sms.OrderNotification{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderType:   order.OrderType,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
	}
	if order.User != nil {
		userID := order.User.ID
		notification.UserID = &userID
		notification.CustomerName = order.User.DisplayName
		notification.CustomerPhone = order.User.Phone
	}

	results := h.dispatcher.SendOrderNotifications(c.Context(), notification, notificationType, h.cfg.AdminPhone)

	success := len(results) > 0
	for _, r := range results {
		if !r.Success {
			success = false
		}
	}

	return c.JSON(fiber.Map{
		"success": success,
		"results": results,
	})
}

// SMSBalance reports the vendor account balance.
func (h *SMSHandler) SMSBalance(c *fiber.Ctx) error {
	result, err := h.dispatcher.Balance(c.Context())
	if err != nil {
		if errors.Is(err, sms.ErrNotConfigured) {
			return fiber.NewError(fiber.StatusBadRequest, "SMS is not configured")
		}
		raw := ""
		if result != nil {
			raw = result.Raw
		}
		return c.JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
			"raw":     raw,
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"balance":    result.Balance,
		"raw":        result.Raw,
		"lowBalance": result.Low,
	})
}
