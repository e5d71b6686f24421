// Package mysql provides a MySQL-backed named-collection store built on gorm.
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/sitebook/store"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Collection is the row holding one document.
type Collection struct {
	Key       string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:longtext;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Collection) TableName() string { return "sitebook_collections" }

// Store persists collections in MySQL.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the collections table.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("mysql dsn is required")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return New(db)
}

// New wraps an open gorm handle and migrates the collections table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Collection{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get implements the store.Store interface.
func (s *Store) Get(ctx context.Context, key string, v any) error {
	var row Collection
	err := s.db.WithContext(ctx).First(&row, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%q: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(row.Data), v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// Set implements the store.Store interface.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	row := Collection{Key: key, Data: string(data), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
