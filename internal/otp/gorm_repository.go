package otp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/phone"
	"github.com/iobuilds/print-lanka-sub001/internal/utils"
)

// GormSessionRepository persists verification sessions in Postgres.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository constructs a Postgres-backed repository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *models.VerificationSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormSessionRepository) DeleteByPhone(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Delete(&models.VerificationSession{}).Error
}

func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.VerificationSession{}).Error
}

func (r *GormSessionRepository) PendingByPhone(ctx context.Context, phone string) (*models.VerificationSession, error) {
	var session models.VerificationSession
	err := r.db.WithContext(ctx).
		Where("phone = ? AND verified = ?", phone, false).
		Order("created_at desc").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) VerifiedByID(ctx context.Context, id uuid.UUID, phone string) (*models.VerificationSession, error) {
	var session models.VerificationSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND phone = ? AND verified = ?", id, phone, true).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// IncrementAttempts is a single conditional UPDATE so concurrent Verify calls
// each observe a distinct counter value.
func (r *GormSessionRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Raw(
		`UPDATE verification_sessions SET attempts = attempts + 1, updated_at = NOW()
		 WHERE id = ? RETURNING attempts`, id,
	).Scan(&attempts).Error
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

// MarkVerified flips verified exactly once; the WHERE clause guarantees a
// single winner among racing verifiers.
func (r *GormSessionRepository) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VerificationSession{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verified", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GormAccountDirectory resolves users with the tolerant phone matching:
// exact canonical match, then local-format match, then suffix containment.
// The fallbacks exist for legacy rows saved before normalization was applied
// on write.
type GormAccountDirectory struct {
	db *gorm.DB
}

// NewGormAccountDirectory constructs a Postgres-backed account directory.
func NewGormAccountDirectory(db *gorm.DB) *GormAccountDirectory {
	return &GormAccountDirectory{db: db}
}

func (d *GormAccountDirectory) FindByPhone(ctx context.Context, canonical string) (*models.User, error) {
	queries := []struct {
		clause string
		arg    string
	}{
		{"phone = ?", canonical},
		{"phone = ?", phone.LocalForm(canonical)},
		{"phone LIKE ?", "%" + phone.SignificantDigits(canonical)},
	}

	for _, q := range queries {
		var user models.User
		err := d.db.WithContext(ctx).Where(q.clause, q.arg).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
	return nil, nil
}

// GormPasswordUpdater writes a bcrypt hash of the new password onto the user
// row. This is the concrete credential-update capability behind the reset
// coordinator.
type GormPasswordUpdater struct {
	db *gorm.DB
}

// NewGormPasswordUpdater constructs the updater.
func NewGormPasswordUpdater(db *gorm.DB) *GormPasswordUpdater {
	return &GormPasswordUpdater{db: db}
}

func (u *GormPasswordUpdater) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}
