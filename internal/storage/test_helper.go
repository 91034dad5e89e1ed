package storage

import (
	"io"
	"log/slog"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestStore opens an in-memory sqlite store with the schema migrated.
func SetupTestStore(t *testing.T, opts Options) *GormStore {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewGormStore(db, log, opts)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	return store
}
