package sms

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

// GormConfigSource reads the provider configuration from Postgres. The most
// recently updated row wins, which lets admins switch vendors by saving a
// new row without deleting history.
type GormConfigSource struct {
	db *gorm.DB
}

// NewGormConfigSource constructs a Postgres-backed config source.
func NewGormConfigSource(db *gorm.DB) *GormConfigSource {
	return &GormConfigSource{db: db}
}

func (s *GormConfigSource) Active(ctx context.Context) (*models.SMSProviderConfig, error) {
	var cfg models.SMSProviderConfig
	err := s.db.WithContext(ctx).Order("updated_at desc").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GormRecordStore persists notification records in Postgres.
type GormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore constructs a Postgres-backed record store.
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

func (s *GormRecordStore) Create(ctx context.Context, record *models.NotificationRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *GormRecordStore) Update(ctx context.Context, record *models.NotificationRecord) error {
	return s.db.WithContext(ctx).Save(record).Error
}
