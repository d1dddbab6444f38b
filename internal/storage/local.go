package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalRoute is the path the router serves the local directory under
const LocalRoute = "/uploads/audio"

type Local struct {
	dir       string
	publicURL string
}

// NewLocal creates dir if needed. publicURL is the address of this server.
func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory, %w", err)
	}

	return &Local{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Save(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Write to a temp file first so a half written upload is never visible
	// under its final name
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file, %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file, %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file, %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, key)); err != nil {
		return fmt.Errorf("failed to move file into place, %w", err)
	}

	return nil
}

func (l *Local) Delete(_ context.Context, keys ...string) error {
	var errs []error

	for _, key := range keys {
		if !ValidKey(key) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidKey, key))
			continue
		}

		err := os.Remove(filepath.Join(l.dir, key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	if !ValidKey(key) {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	info, err := os.Stat(filepath.Join(l.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	return info.Mode().IsRegular(), nil
}

func (l *Local) List(context.Context) ([]Object, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory, %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// Removed since ReadDir
			continue
		}

		objects = append(objects, Object{Key: e.Name(), ModTime: info.ModTime()})
	}

	return objects, nil
}

func (l *Local) URL(key string) string {
	return l.publicURL + LocalRoute + "/" + key
}
