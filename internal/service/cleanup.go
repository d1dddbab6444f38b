package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/storage"
	"github.com/mohitgusain8671/VoiceNote/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 10 * time.Minute

// Maintenance holds the periodic jobs that keep the store and the file
// storage tidy
type Maintenance struct {
	store store.Store
	files storage.Storage
	grace time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewMaintenance(s store.Store, files storage.Storage, grace time.Duration, log *zap.Logger) *Maintenance {
	return &Maintenance{
		store: s,
		files: files,
		grace: grace,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// PurgeExpiredTokens deletes tokens that can no longer be used
func (m *Maintenance) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpiredTokens(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	if n > 0 {
		m.log.Debug("Cleaned up expired tokens", zap.Int64("count", n))
	}

	return n, nil
}

// SweepOrphans deletes stored recordings that no note references. Files
// younger than the grace period are kept since they may belong to a
// transcription whose note hasn't been created yet.
func (m *Maintenance) SweepOrphans(ctx context.Context) (int, error) {
	objects, err := m.files.List(ctx)
	if err != nil {
		return 0, err
	}

	paths, err := m.store.AudioPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query referenced audio files: %w", err)
	}

	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	cutoff := m.now().Add(-m.grace)

	var orphans []string
	for _, o := range objects {
		if _, ok := referenced[o.Key]; ok {
			continue
		}

		if o.ModTime.After(cutoff) {
			continue
		}

		orphans = append(orphans, o.Key)
	}

	if len(orphans) == 0 {
		return 0, nil
	}

	if err := m.files.Delete(ctx, orphans...); err != nil {
		return 0, fmt.Errorf("failed to delete orphaned audio files: %w", err)
	}

	m.log.Info("Deleted orphaned audio files", zap.Int("count", len(orphans)))
	return len(orphans), nil
}

// Schedule registers both jobs on a new cron scheduler and starts it. The
// caller stops it on shutdown.
func (m *Maintenance) Schedule(tokensSpec, orphansSpec string) (*cron.Cron, error) {
	l := cronLogger{m.log.Sugar()}

	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"token_cleanup", tokensSpec, func(ctx context.Context) error {
			_, err := m.PurgeExpiredTokens(ctx)
			return err
		}},
		{"orphan_sweep", orphansSpec, func(ctx context.Context) error {
			_, err := m.SweepOrphans(ctx)
			return err
		}},
	}

	for _, j := range jobs {
		_, err := c.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if err := j.run(ctx); err != nil {
				m.log.Error("Maintenance job failed", zap.String("job", j.name), zap.Error(err))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s, %w", j.spec, j.name, err)
		}

		m.log.Debug("Maintenance job attached", zap.String("job", j.name), zap.String("schedule", j.spec))
	}

	c.Start()
	return c, nil
}

// cronLogger routes cron's logging through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
