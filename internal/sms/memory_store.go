package sms

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

// StaticConfigSource serves a fixed configuration. Used in tests.
type StaticConfigSource struct {
	Cfg *models.SMSProviderConfig
}

func (s StaticConfigSource) Active(_ context.Context) (*models.SMSProviderConfig, error) {
	return s.Cfg, nil
}

// MemoryRecordStore collects notification records in memory. Used in tests.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records []*models.NotificationRecord
}

// NewMemoryRecordStore constructs an empty store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

func (s *MemoryRecordStore) Create(_ context.Context, record *models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	clone := *record
	s.records = append(s.records, &clone)
	return nil
}

func (s *MemoryRecordStore) Update(_ context.Context, record *models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == record.ID {
			clone := *record
			s.records[i] = &clone
			return nil
		}
	}
	clone := *record
	s.records = append(s.records, &clone)
	return nil
}

// Records returns a snapshot of all stored records.
func (s *MemoryRecordStore) Records() []models.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.NotificationRecord, len(s.records))
	for i, r := range s.records {
		out[i] = *r
	}
	return out
}
