package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/otp"
)

// OTPHandler exposes the OTP issue/verify/reset endpoints.
type OTPHandler struct {
	svc   *otp.Service
	reset *otp.ResetCoordinator
}

// NewOTPHandler constructs an OTPHandler.
func NewOTPHandler(svc *otp.Service, reset *otp.ResetCoordinator) *OTPHandler {
	return &OTPHandler{svc: svc, reset: reset}
}

type issueOTPRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
}

// IssueOTP sends a verification code for registration or password reset.
func (h *OTPHandler) IssueOTP(c *fiber.Ctx) error {
	var req issueOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Purpose == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone and purpose are required")
	}
	if req.Purpose != otp.PurposeRegistration && req.Purpose != otp.PurposeForgotPassword {
		return fiber.NewError(fiber.StatusBadRequest, "purpose must be registration or forgot_password")
	}

	canonical, err := h.svc.Issue(c.Context(), req.Phone, req.Purpose)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrAccountNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, otp.ErrAlreadyRegistered):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "verification code sent",
		"phone":   canonical,
	})
}

type verifyOTPRequest struct {
	Phone   string `json:"phone"`
	OTPCode string `json:"otp_code"`
}

// VerifyOTP checks a submitted code against the pending session.
func (h *OTPHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.OTPCode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone and otp_code are required")
	}

	sessionID, err := h.svc.Verify(c.Context(), req.Phone, req.OTPCode)
	if err != nil {
		var invalidCode *otp.InvalidCodeError
		switch {
		case errors.Is(err, otp.ErrSessionNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, otp.ErrCodeExpired), errors.Is(err, otp.ErrTooManyAttempts):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.As(err, &invalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":            false,
				"message":            "invalid verification code",
				"remaining_attempts": invalidCode.Remaining,
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "phone number verified",
		"session_id": sessionID,
	})
}

type resetPasswordRequest struct {
	Phone       string `json:"phone"`
	NewPassword string `json:"new_password"`
	SessionID   string `json:"session_id"`
}

// ResetPassword consumes a verified session to set a new password.
func (h *OTPHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.NewPassword == "" || req.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone, new_password and session_id are required")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session_id")
	}

	if err := h.reset.Reset(c.Context(), req.Phone, req.NewPassword, sessionID); err != nil {
		switch {
		case errors.Is(err, otp.ErrPasswordTooShort),
			errors.Is(err, otp.ErrInvalidSession),
			errors.Is(err, otp.ErrSessionExpired):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, otp.ErrAccountNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, otp.ErrUpdateFailed):
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated successfully",
	})
}
