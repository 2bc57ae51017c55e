package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/phone"
)

// Issue purposes.
const (
	PurposeRegistration   = "registration"
	PurposeForgotPassword = "forgot_password"
)

const (
	codeTTL     = 5 * time.Minute
	maxAttempts = 5
	// graceWindow extends the session's life past ExpiresAt for the
	// consumption step only; verification itself never stretches it.
	graceWindow = 10 * time.Minute
)

// Service orchestrates issuance and verification of OTP challenges.
type Service struct {
	sessions SessionRepository
	accounts AccountDirectory
	notifier Notifier
	now      func() time.Time
}

// NewService constructs the OTP service.
func NewService(sessions SessionRepository, accounts AccountDirectory, notifier Notifier) *Service {
	return &Service{
		sessions: sessions,
		accounts: accounts,
		notifier: notifier,
		now:      time.Now,
	}
}

// Issue creates a fresh verification session for the phone and dispatches the
// code by SMS. Any prior session for the phone is deleted first. Returns the
// canonical phone regardless of SMS delivery outcome.
func (s *Service) Issue(ctx context.Context, rawPhone, purpose string) (string, error) {
	canonical := phone.Normalize(rawPhone)

	account, err := s.accounts.FindByPhone(ctx, canonical)
	if err != nil {
		return "", err
	}

	switch purpose {
	case PurposeForgotPassword:
		if account == nil {
			return "", ErrAccountNotFound
		}
	case PurposeRegistration:
		if account != nil {
			return "", ErrAlreadyRegistered
		}
	default:
		return "", fmt.Errorf("unknown purpose %q", purpose)
	}

	if err := s.sessions.DeleteByPhone(ctx, canonical); err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	session := &models.VerificationSession{
		Phone:     canonical,
		Code:      code,
		ExpiresAt: s.now().Add(codeTTL),
		Verified:  false,
		Attempts:  0,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	// The session stands even when delivery fails; the caller re-issues to
	// get a new code.
	message := fmt.Sprintf("Your Print Lanka verification code is %s. It expires in 5 minutes.", code)
	if err := s.notifier.Send(ctx, canonical, message); err != nil {
		log.Printf("otp: sms delivery to %s failed: %v", canonical, err)
	}

	return canonical, nil
}

// Verify checks a submitted code against the pending session for the phone.
// Every call consumes one attempt, including the successful one. On success
// the session is marked verified and kept for a later consumption step.
func (s *Service) Verify(ctx context.Context, rawPhone, code string) (uuid.UUID, error) {
	canonical := phone.Normalize(rawPhone)

	session, err := s.sessions.PendingByPhone(ctx, canonical)
	if err != nil {
		return uuid.Nil, err
	}
	if session == nil {
		return uuid.Nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, ErrCodeExpired
	}

	if session.Attempts >= maxAttempts {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, ErrTooManyAttempts
	}

	// Attempts are spent before the comparison, so the final permitted
	// attempt counts whether or not it succeeds.
	attempts, err := s.sessions.IncrementAttempts(ctx, session.ID)
	if err != nil {
		return uuid.Nil, err
	}

	if session.Code != code {
		return uuid.Nil, &InvalidCodeError{Remaining: maxAttempts - attempts}
	}

	won, err := s.sessions.MarkVerified(ctx, session.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if !won {
		// A concurrent verifier flipped the session first; only one caller
		// may claim the verification.
		return uuid.Nil, ErrSessionNotFound
	}

	return session.ID, nil
}

// ConsumeVerified deletes a verified session after its one permitted use
// (account creation for the registration flow). Reports ErrInvalidSession
// when no verified session matches. Consumption honors the same grace
/// window as the reset flow: a verified session left unconsumed past
// ExpiresAt plus the window is deleted and rejected.
func (s *Service) ConsumeVerified(ctx context.Context, rawPhone string, sessionID uuid.UUID) error {
	canonical := phone.Normalize(rawPhone)

	session, err := s.sessions.VerifiedByID(ctx, sessionID, canonical)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrInvalidSession
	}

	if s.now().After(session.ExpiresAt.Add(graceWindow)) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return err
		}
		return ErrSessionExpired
	}

	return s.sessions.Delete(ctx, session.ID)
}

func generateCode() (string, error) {
	// Uniform over 100000..999999.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
