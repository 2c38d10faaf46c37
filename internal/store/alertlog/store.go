package alertlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	storemodel "hypermon/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record is the external view of one journaled alert.
type Record struct {
	TraceID   string `json:"trace_id"`
	Kind      string `json:"kind"`
	Asset     string `json:"asset,omitempty"`
	Body      string `json:"body"`
	Delivered bool   `json:"delivered"`
	CreatedAt int64  `json:"created_at"` // unix milliseconds
}

// Store is the append-only alert journal, SQLite via Gorm. It exists for
// auditing and the status API only; diffing never consults it, so wiping
// the file loses history but never desyncs the monitor.
type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("alert journal: path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("alert journal: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&storemodel.AlertModel{}); err != nil {
		return nil, fmt.Errorf("alert journal: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Append journals one alert attempt.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("alert journal not initialized")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixMilli()
	}
	row := storemodel.AlertModel{
		TraceID:   rec.TraceID,
		Kind:      rec.Kind,
		Asset:     rec.Asset,
		Body:      rec.Body,
		Delivered: rec.Delivered,
		CreatedAt: rec.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Recent returns up to limit journaled alerts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("alert journal not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var rows []storemodel.AlertModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record{
			TraceID:   row.TraceID,
			Kind:      row.Kind,
			Asset:     row.Asset,
			Body:      row.Body,
			Delivered: row.Delivered,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("alert journal: create dir %s: %w", dir, err)
	}
	return nil
}
