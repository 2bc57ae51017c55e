package otp

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/phone"
)

// ResetCoordinator consumes a verified session to authorize a one-time
// password change.
type ResetCoordinator struct {
	sessions SessionRepository
	accounts AccountDirectory
	updater  PasswordUpdater
	now      func() time.Time
}

// NewResetCoordinator constructs the coordinator.
func NewResetCoordinator(sessions SessionRepository, accounts AccountDirectory, updater PasswordUpdater) *ResetCoordinator {
	return &ResetCoordinator{
		sessions: sessions,
		accounts: accounts,
		updater:  updater,
		now:      time.Now,
	}
}

// Reset changes the account password backed by a verified session. The
// session may be consumed up to the grace window past its original expiry;
// a failed credential update leaves it in place for a retry.
func (c *ResetCoordinator) Reset(ctx context.Context, rawPhone, newPassword string, sessionID uuid.UUID) error {
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	canonical := phone.Normalize(rawPhone)

	session, err := c.sessions.VerifiedByID(ctx, sessionID, canonical)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrInvalidSession
	}

	if c.now().After(session.ExpiresAt.Add(graceWindow)) {
		if err := c.sessions.Delete(ctx, session.ID); err != nil {
			return err
		}
		return ErrSessionExpired
	}

	account, err := c.accounts.FindByPhone(ctx, canonical)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := c.updater.UpdatePassword(ctx, account.ID, newPassword); err != nil {
		// Keep the session so the user can retry within the grace window.
		log.Printf("otp: password update for %s failed: %v", canonical, err)
		return ErrUpdateFailed
	}

	return c.sessions.Delete(ctx, session.ID)
}
