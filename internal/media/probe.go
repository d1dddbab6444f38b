// Package media inspects uploaded recordings
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const probeTimeout = time.Minute

// FFprobe reads media durations by running ffprobe
type FFprobe struct {
	path string
}

// NewFFprobe returns nil if the binary can't be found, which callers treat
// as "durations unknown"
func NewFFprobe(path string) *FFprobe {
	if path == "" {
		return nil
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		zap.L().Warn("ffprobe not found, audio durations won't be recorded", zap.String("path", path))
		return nil
	}

	return &FFprobe{path: resolved}
}

// Duration returns the length of the media in r in seconds. r is fed to
// ffprobe over stdin.
func (f *FFprobe) Duration(ctx context.Context, r io.Reader) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	zap.L().Debug("Running FFprobe to determine audio duration")

	cmd := exec.CommandContext(ctx, f.path, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "-i", "pipe:0")

	var stdOut, stdErr bytes.Buffer
	cmd.Stdin = r
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed, %w (%s)", err, stdErr.String())
	}

	durStr := strings.TrimSpace(stdOut.String())
	d, err := strconv.ParseFloat(durStr, 64)
	if err != nil {
		// Streamed webm recordings often carry no duration at all
		return 0, fmt.Errorf("malformed duration %q: %w", durStr, err)
	}

	return d, nil
}
