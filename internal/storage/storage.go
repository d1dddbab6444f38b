// Package storage keeps the audio recordings attached to notes
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

type Object struct {
	Key     string
	ModTime time.Time
}

type Storage interface {
	// Save writes r under key. size may be -1 if unknown.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes keys. Keys that don't exist are ignored.
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) ([]Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	// URL is the public address the file is served from
	URL(key string) string
}

// ValidKey rejects anything that could escape the storage root
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}

	return !strings.ContainsAny(key, `/\`) && !strings.Contains(key, "..")
}
