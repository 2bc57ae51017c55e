package otp

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/phone"
)

// MemorySessionRepository is an in-memory SessionRepository used in tests and
// local development.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.VerificationSession
}

// NewMemorySessionRepository constructs an empty in-memory repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]*models.VerificationSession)}
}

func (r *MemorySessionRepository) Create(_ context.Context, session *models.VerificationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *MemorySessionRepository) DeleteByPhone(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.Phone == phone {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) PendingByPhone(_ context.Context, phone string) (*models.VerificationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.Phone == phone && !s.Verified {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MemorySessionRepository) VerifiedByID(_ context.Context, id uuid.UUID, phone string) (*models.VerificationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.Phone != phone || !s.Verified {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (r *MemorySessionRepository) IncrementAttempts(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	s.Attempts++
	return s.Attempts, nil
}

func (r *MemorySessionRepository) MarkVerified(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false, ErrSessionNotFound
	}
	if s.Verified {
		return false, nil
	}
	s.Verified = true
	return true, nil
}

// MemoryAccountDirectory resolves accounts from a fixed slice using the same
// prioritized matching as the GORM directory.
type MemoryAccountDirectory struct {
	mu    sync.Mutex
	users []models.User
}

// NewMemoryAccountDirectory constructs a directory over the given users.
func NewMemoryAccountDirectory(users ...models.User) *MemoryAccountDirectory {
	return &MemoryAccountDirectory{users: users}
}

// Add registers another user.
func (d *MemoryAccountDirectory) Add(user models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, user)
}

func (d *MemoryAccountDirectory) FindByPhone(_ context.Context, canonical string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	local := phone.LocalForm(canonical)
	sig := phone.SignificantDigits(canonical)

	for i := range d.users {
		if d.users[i].Phone == canonical {
			u := d.users[i]
			return &u, nil
		}
	}
	for i := range d.users {
		if d.users[i].Phone == local {
			u := d.users[i]
			return &u, nil
		}
	}
	for i := range d.users {
		if strings.HasSuffix(d.users[i].Phone, sig) {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}
