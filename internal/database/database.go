package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filmshelf/backend/internal/logging"
	"filmshelf/backend/internal/models"

	"github.com/charmbracelet/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open opens a database for the given driver ("sqlite" or "postgres").
func Open(driver, dsn string, l *log.Logger) (*gorm.DB, error) {
	// Configure GORM logger
	customLogger := logger.New(
		logging.Standard(l, "gorm"),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{Logger: customLogger, TranslateError: true}

	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite", "":
		memory := isMemoryDSN(dsn)
		if !memory {
			if err := os.MkdirAll(filepath.Dir(sqlitePath(dsn)), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		// Cascading deletes need foreign keys enabled on every connection.
		db, err := gorm.Open(sqlite.Open(sqliteDSN(dsn)), cfg)
		if err != nil {
			return nil, err
		}
		if memory {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(1)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// sqliteDSN turns on foreign keys, keeping any query parameters already set.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// sqlitePath strips the file: scheme and query from a sqlite DSN.
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Film{}, &models.LendingRequest{})
}

// Connect initializes the database connection and runs migrations.
func Connect(driver, dsn string, l *log.Logger) {
	var err error

	DB, err = Open(driver, dsn, l)
	if err != nil {
		l.Fatal("Failed to connect to database", "driver", driver, "err", err)
	}

	l.Info("Database connection established.", "driver", driver)

	if err := Migrate(DB); err != nil {
		l.Fatal("Failed to migrate database", "err", err)
	}

	l.Info("Database migrated successfully.")
}
