package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iobuilds/print-lanka-sub001/internal/config"
	"github.com/iobuilds/print-lanka-sub001/internal/middleware"
	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/sms"
	"github.com/iobuilds/print-lanka-sub001/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db         *gorm.DB
	dispatcher *sms.Dispatcher
	cfg        *config.Config
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, dispatcher *sms.Dispatcher, cfg *config.Config) *OrderHandler {
	return &OrderHandler{db: db, dispatcher: dispatcher, cfg: cfg}
}

type orderItemRequest struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type createOrderRequest struct {
	OrderType string             `json:"order_type"`
	Currency  string             `json:"currency"`
	Notes     string             `json:"notes"`
	Material  string             `json:"material"`
	ColorName string             `json:"color_name"`
	Items     []orderItemRequest `json:"items"`
}

// CreateOrder places an order and dispatches the order notifications.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order has no items")
	}

	orderType := req.OrderType
	if orderType != models.OrderTypePrint {
		orderType = models.OrderTypeShop
	}

	order := models.Order{
		UserID:      userID,
		OrderNumber: fmt.Sprintf("PL-%d", time.Now().UnixNano()/1e6),
		OrderType:   orderType,
		Status:      "pending",
		PlacedAt:    time.Now(),
		Currency:    req.Currency,
		Notes:       req.Notes,
		Material:    req.Material,
		ColorName:   req.ColorName,
	}
	if order.Currency == "" {
		order.Currency = "LKR"
	}

	var total float64
	for _, item := range req.Items {
		lineTotal := item.UnitPrice * float64(item.Quantity)
		orderItem := models.OrderItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		}
		if item.ProductID != "" {
			if id, err := uuid.Parse(item.ProductID); err == nil {
				orderItem.ProductID = &id
			}
		}
		order.Items = append(order.Items, orderItem)
		total += lineTotal
	}
	order.TotalAmount = total

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err == nil {
		notification := sms.OrderNotification{
			OrderID:       order.ID,
			UserID:        &user.ID,
			OrderNumber:   order.OrderNumber,
			OrderType:     order.OrderType,
			CustomerName:  user.DisplayName,
			CustomerPhone: user.Phone,
			TotalAmount:   order.TotalAmount,
			Currency:      order.Currency,
		}
		results := h.dispatcher.SendOrderNotifications(c.Context(), notification, sms.NotifyAll, h.cfg.AdminPhone)
		for _, r := range results {
			if !r.Success {
				log.Printf("order %s: %s notification not sent: %s", order.OrderNumber, r.Recipient, r.Detail)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// ListOrders returns the authenticated user's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pagination := utils.ParsePagination(c)

	var orders []models.Order
	if err := h.db.Where("user_id = ?", userID).
		Preload("Items").
		Order("placed_at desc").
		Limit(pagination.Limit).
		Offset(pagination.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"page":    pagination.Page,
		"limit":   pagination.Limit,
	})
}

// GetOrder returns one of the authenticated user's orders.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}
