package otp

import (
	"errors"
	"fmt"
)

// Sentinel errors for the OTP issue/verify/reset flows. Handlers translate
// these to HTTP statuses; the service layer never touches fiber.
var (
	ErrAccountNotFound   = errors.New("no account found for this phone number")
	ErrAlreadyRegistered = errors.New("phone number is already registered")
	ErrSessionNotFound   = errors.New("no pending verification for this phone number")
	ErrCodeExpired       = errors.New("verification code has expired")
	ErrTooManyAttempts   = errors.New("too many verification attempts")
	ErrInvalidSession    = errors.New("invalid or unverified session")
	ErrSessionExpired    = errors.New("verification session has expired")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrUpdateFailed      = errors.New("failed to update password")
)

// InvalidCodeError reports a wrong code on a still-live session, carrying how
// many attempts remain before the session is destroyed.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid verification code, %d attempts remaining", e.Remaining)
}
