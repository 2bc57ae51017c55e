package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

// AdminHandler manages the SMS provider configuration.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// GetSMSConfig returns the active provider configuration. Secrets are not
// echoed back.
func (h *AdminHandler) GetSMSConfig(c *fiber.Ctx) error {
	var cfg models.SMSProviderConfig
	err := h.db.Order("updated_at desc").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    nil,
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cfg,
	})
}

type smsConfigRequest struct {
	Provider  string `json:"provider"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	SenderID  string `json:"sender_id"`
	APIURL    string `json:"api_url"`
	Enabled   bool   `json:"enabled"`
}

// PutSMSConfig saves the provider configuration. The newest row becomes the
// active one.
func (h *AdminHandler) PutSMSConfig(c *fiber.Ctx) error {
	var req smsConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Provider == "" {
		return fiber.NewError(fiber.StatusBadRequest, "provider is required")
	}

	cfg := models.SMSProviderConfig{
		Provider:  req.Provider,
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		SenderID:  req.SenderID,
		APIURL:    req.APIURL,
		Enabled:   req.Enabled,
	}

	if err := h.db.Create(&cfg).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cfg,
	})
}
