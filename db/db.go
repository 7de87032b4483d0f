package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database variables
var (
	Db   *gorm.DB      // GORM database instance used by the CLI
	Path = defaultPath() // Default database path
)

const dbFileName = "ftracker.db"

// defaultPath resolves the database location from FTRACKER_HOME, then
// XDG_DATA_HOME, then the user's home directory.
func defaultPath() string {
	if home := os.Getenv("FTRACKER_HOME"); home != "" {
		return filepath.Join(home, dbFileName)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ftracker", dbFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".ftracker", dbFileName)
}

// ConfigurePath recomputes Path from the environment.
func ConfigurePath() {
	Path = defaultPath()
}

// InitDB opens the database at Path, creates the tables if they don't exist
// and stores the connection in Db.
func InitDB() error {
	gormDB, err := Open(Path)
	if err != nil {
		return err
	}
	Db = gormDB
	log.Info().Str("path", Path).Msg("Database initialized successfully")
	return nil
}

// Open opens (and migrates) a sqlite database at the given path. The special
// path ":memory:" opens a private in-memory database.
func Open(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := createDBDirectory(path); err != nil {
			return nil, err
		}
	}

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database")
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// sqlite allows a single writer; one connection also keeps ":memory:"
	// databases shared across goroutines.
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get raw database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrateTables(gormDB); err != nil {
		return nil, err
	}
	return gormDB, nil
}

// createDBDirectory creates the directory for the database file if it does not exist.
func createDBDirectory(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error().Err(err).Msg("Failed to create database directory")
			return err
		}
	}
	return nil
}

// migrateTables performs automatic migration for the Token and Transaction tables.
func migrateTables(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(&Token{}, &Transaction{}); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		return err
	}
	return nil
}

// gormLogger silences GORM unless zerolog is enabled.
func gormLogger() logger.Interface {
	if zerolog.GlobalLevel() == zerolog.Disabled {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.Default.LogMode(logger.Warn)
}

// GetDB returns the global database connection.
func GetDB() *gorm.DB {
	return Db
}

// CloseDB closes the global database connection. It is a no-op when the
// database was never opened.
func CloseDB() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get raw database connection")
		return err
	}
	return sqlDB.Close()
}

// Shutdown closes the database and ignores any error. Used by signal handlers.
func Shutdown() {
	if err := CloseDB(); err != nil {
		log.Debug().Err(err).Msg("Error while closing database during shutdown")
	}
}
