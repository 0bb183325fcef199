package postgres

import (
	"context"
	"errors"
	"fmt"
	"mindmap-share/core"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Mindmap struct {
	ID   string `gorm:"type:text;primaryKey"`
	Data string `gorm:"type:text;not null"`
}

func (Mindmap) TableName() string { return "mindmaps" }

type recordStore struct {
	dsn string
	db  *gorm.DB
}

func NewRecordStore(dsn string) core.RecordStore {
	return &recordStore{dsn: dsn}
}

// Init connects and auto-migrates the mindmaps table.
func (s *recordStore) Init(ctx context.Context) error {
	if s.db == nil {
		db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		s.db = db
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&Mindmap{}); err != nil {
		return fmt.Errorf("failed to migrate mindmaps table: %w", err)
	}
	return nil
}

func (s *recordStore) Insert(ctx context.Context, id string, data []byte) error {
	if s.db == nil {
		return core.ErrNotInitialized
	}
	err := s.db.WithContext(ctx).Create(&Mindmap{ID: id, Data: string(data)}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.ErrTokenConflict
	}
	return err
}

func (s *recordStore) Get(ctx context.Context, id string) ([]byte, error) {
	if s.db == nil {
		return nil, core.ErrNotInitialized
	}
	var m Mindmap
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return []byte(m.Data), nil
}

func (s *recordStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
