package db

import (
	"fmt"
	"os"
	"path/filepath"

	"wedding-rsvp/internal/config"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLite opens a file-backed store for local development and tests. The
// schema is created with AutoMigrate because the SQL migrations are postgres
// specific.
func NewSQLite(path string, cfg config.DBConfig, log logger.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	log.Info("db: opening sqlite", "path", path)
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_foreign_keys=on", path)), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	// sqlite serialises writers; a single connection avoids "database is locked".
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(gormDB); err != nil {
		return nil, err
	}

	log.Info("db: connected", "driver", "sqlite")
	return gormDB, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&rsvpdomain.RSVP{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
