package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persisted key-value boundary every entity (deck list,
// cache buckets, cache metadata) is stored behind. Values are whole JSON
// documents: callers read in full, merge in memory and write back in
// full, which is the only atomicity discipline this system uses.
type Store interface {
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, values map[string]json.RawMessage) error
	Clear(ctx context.Context) error
}

// Record is a single persisted key-value row.
type Record struct {
	Key       string         `gorm:"primaryKey;size:200"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// GormStore implements Store on a single gorm-managed table, so the same
// code runs on the sqlite default and a postgres DSN.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate storage records: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	if len(keys) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var records []Record
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("read storage records: %w", err)
	}

	values := make(map[string]json.RawMessage, len(records))
	for _, record := range records {
		values[record.Key] = json.RawMessage(record.Value)
	}
	return values, nil
}

func (s *GormStore) Set(ctx context.Context, values map[string]json.RawMessage) error {
	if len(values) == 0 {
		return nil
	}

	records := make([]Record, 0, len(values))
	for key, value := range values {
		records = append(records, Record{Key: key, Value: datatypes.JSON(value)})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("write storage records: %w", err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("clear storage records: %w", err)
	}
	return nil
}
