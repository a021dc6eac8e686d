package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-terminal/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the store the terminal talks to.
type Options struct {
	Driver   string // "mysql" or "sqlite"
	DSN      string
	LogLevel string // gorm logger level: silent, error, warn, info
	Retries  int
	Backoff  time.Duration
}

// Open connects with GORM, retrying while the database comes up, and migrates the schema.
func Open(opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, errors.New("database DSN is empty")
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Backoff == 0 {
		opts.Backoff = 2 * time.Second
	}

	var dialector gorm.Dialector
	switch strings.ToLower(opts.Driver) {
	case "", "mysql":
		dialector = mysql.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < opts.Retries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logLevel(opts.LogLevel)),
		})
		if err == nil {
			break
		}
		zap.L().Warn("failed to connect to database, retrying",
			zap.Int("attempt", i+1), zap.Int("of", opts.Retries), zap.Duration("backoff", opts.Backoff), zap.Error(err))
		if i+1 < opts.Retries {
			time.Sleep(opts.Backoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", opts.Retries, err)
	}

	if strings.EqualFold(opts.Driver, "sqlite") {
		// One connection: in-memory databases are per connection, and
		// SQLite serializes writers anyway.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	zap.L().Info("database ready", zap.String("driver", db.Dialector.Name()))
	return db, nil
}

// Migrate syncs the schema; safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func logLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}
