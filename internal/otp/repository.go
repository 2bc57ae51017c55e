package otp

import (
	"context"

	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

// SessionRepository stores verification sessions keyed by canonical phone.
// Implementations must make IncrementAttempts and MarkVerified atomic so
// that concurrent Verify calls for the same phone have a single winner.
type SessionRepository interface {
	// Create inserts a fresh session.
	Create(ctx context.Context, session *models.VerificationSession) error
	// DeleteByPhone removes any session for the phone, verified or not.
	DeleteByPhone(ctx context.Context, phone string) error
	// Delete removes a session by id.
	Delete(ctx context.Context, id uuid.UUID) error
	// PendingByPhone returns the unverified session for the phone, or
	// (nil, nil) when none exists.
	PendingByPhone(ctx context.Context, phone string) (*models.VerificationSession, error)
	// VerifiedByID returns the session only when id and phone match and it
	// has been verified; (nil, nil) otherwise.
	VerifiedByID(ctx context.Context, id uuid.UUID, phone string) (*models.VerificationSession, error)
	// IncrementAttempts bumps the attempt counter and returns the new value.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	// MarkVerified flips verified to true; reports false when another caller
	// already won the flip.
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
}

// AccountDirectory resolves customer accounts by canonical phone using the
// tolerant matching rules: exact match, then local-format match, then
// suffix containment against stored values. First match wins.
type AccountDirectory interface {
	FindByPhone(ctx context.Context, canonical string) (*models.User, error)
}

// PasswordUpdater is the external credential-change capability consumed by
// the reset coordinator.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
}

// Notifier delivers the generated code to the phone. Implemented by the sms
// dispatcher; tests substitute a recorder.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}
