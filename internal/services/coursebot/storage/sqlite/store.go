// Package sqlite provides a SQLite-backed handoff journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlitemigrate "github.com/louisbranch/coursebot/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/coursebot/internal/services/coursebot/storage"
	"github.com/louisbranch/coursebot/internal/services/coursebot/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const maxListLimit = 500

// Store persists handoff records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.HandoffStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite handoff journal and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordHandoff inserts one record, filling ID and IssuedAt when unset.
func (s *Store) RecordHandoff(ctx context.Context, record storage.HandoffRecord) (storage.HandoffRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.HandoffRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.HandoffRecord{}, fmt.Errorf("storage is not configured")
	}
	record.CourseID = strings.TrimSpace(record.CourseID)
	record.URL = strings.TrimSpace(record.URL)
	switch {
	case record.CourseID == "":
		return storage.HandoffRecord{}, fmt.Errorf("%w: course id is required", storage.ErrInvalidRecord)
	case record.TelegramUserID <= 0:
		return storage.HandoffRecord{}, fmt.Errorf("%w: telegram user id is required", storage.ErrInvalidRecord)
	case record.URL == "":
		return storage.HandoffRecord{}, fmt.Errorf("%w: url is required", storage.ErrInvalidRecord)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.IssuedAt.IsZero() {
		record.IssuedAt = s.now()
	}
	record.IssuedAt = fromMillis(toMillis(record.IssuedAt))

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO handoffs (id, course_id, telegram_user_id, url, issued_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.CourseID,
		record.TelegramUserID,
		record.URL,
		toMillis(record.IssuedAt),
	)
	if err != nil {
		return storage.HandoffRecord{}, fmt.Errorf("record handoff: %w", err)
	}
	return record, nil
}

// ListHandoffs returns the newest records for one Telegram user.
func (s *Store) ListHandoffs(ctx context.Context, telegramUserID int64, limit int) ([]storage.HandoffRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, course_id, telegram_user_id, url, issued_at
		   FROM handoffs
		  WHERE telegram_user_id = ?
		  ORDER BY issued_at DESC, id ASC
		  LIMIT ?`,
		telegramUserID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list handoffs: %w", err)
	}
	defer rows.Close()

	var out []storage.HandoffRecord
	for rows.Next() {
		var record storage.HandoffRecord
		var issuedAt int64
		if err := rows.Scan(&record.ID, &record.CourseID, &record.TelegramUserID, &record.URL, &issuedAt); err != nil {
			return nil, fmt.Errorf("scan handoff: %w", err)
		}
		record.IssuedAt = fromMillis(issuedAt)
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate handoffs: %w", err)
	}
	return out, nil
}
