package storage

import (
	"context"
	"fmt"

	"github.com/mohitgusain8671/VoiceNote/config"
)

// New builds the backend selected by storage.type
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocal(cfg.Storage.Local.Dir, cfg.App.PublicURL)
	case "s3":
		return NewS3(ctx, cfg.Storage.S3)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}
}
