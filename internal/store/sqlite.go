package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/dogtrainer/internal/domain"
	"github.com/ashureev/dogtrainer/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writes to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS dogs (
		user_id TEXT PRIMARY KEY,
		profile TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_dogs_updated ON dogs(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetDog retrieves the profile document for a user.
func (s *SQLiteStore) GetDog(ctx context.Context, userID string) (*domain.Dog, error) {
	query := `SELECT profile, created_at, updated_at FROM dogs WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var profile string
	var createdAt, updatedAt int64

	err := row.Scan(&profile, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan dog row: %w", err)
	}

	var dog domain.Dog
	if err := json.Unmarshal([]byte(profile), &dog); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	dog.CreatedAt = time.Unix(createdAt, 0)
	dog.UpdatedAt = time.Unix(updatedAt, 0)
	dog.Normalize()

	return &dog, nil
}

// PutDog writes the full profile document for a user.
// Retries with backoff when SQLite reports a concurrency conflict.
func (s *SQLiteStore) PutDog(ctx context.Context, userID string, dog *domain.Dog) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.putDogOnce(ctx, userID, dog)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) {
			return err
		}
		if i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("PutDog hit SQLite conflict, retrying",
				"user_id", userID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("put dog for %s after %d attempts: %w", userID, maxRetries, err)
}

func (s *SQLiteStore) putDogOnce(ctx context.Context, userID string, dog *domain.Dog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if dog.CreatedAt.IsZero() {
		dog.CreatedAt = now
	}
	dog.UpdatedAt = now

	profile, err := json.Marshal(dog)
	if err != nil {
		return fmt.Errorf("encode profile document: %w", err)
	}

	query := `
	INSERT INTO dogs (user_id, profile, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		profile = excluded.profile,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		userID, string(profile),
		dog.CreatedAt.Unix(), dog.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert dog: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
