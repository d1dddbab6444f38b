// Package db opens the configured database and hands back a store over it
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mohitgusain8671/VoiceNote/config"
	"github.com/mohitgusain8671/VoiceNote/internal/store"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func runningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// NewGorm opens a sqlite or postgres database and migrates the schema
func NewGorm(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if runningInDocker() {
			if _, err := os.Stat(cfg.DSN); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", cfg.DSN)
			}
		}

		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", cfg.Driver, err)
	}

	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}

// Open returns the store backed by the configured driver
func Open(ctx context.Context, cfg config.Database) (store.Store, error) {
	if cfg.Driver == "mongo" {
		client, err := NewMongo(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}

		s := store.NewMongo(client, cfg.Name)
		if err := s.EnsureIndexes(ctx); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}

		return s, nil
	}

	db, err := NewGorm(cfg)
	if err != nil {
		return nil, err
	}

	return store.NewGorm(db), nil
}
