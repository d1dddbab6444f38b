package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads", "audio")

	l, err := NewLocal(dir, "http://localhost:5000/")
	require.NoError(t, err)

	require.NoError(t, l.Save(ctx, "u_1.webm", strings.NewReader("abc"), 3, "audio/webm"))

	data, err := os.ReadFile(filepath.Join(dir, "u_1.webm"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	assert.Equal(t, "http://localhost:5000/uploads/audio/u_1.webm", l.URL("u_1.webm"))

	objects, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "u_1.webm", objects[0].Key)

	ok, err := l.Exists(ctx, "u_1.webm")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Delete(ctx, "u_1.webm", "missing.webm"))
	_, err = os.Stat(filepath.Join(dir, "u_1.webm"))
	assert.True(t, os.IsNotExist(err))

	ok, err = l.Exists(ctx, "u_1.webm")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalRejectsTraversal(t *testing.T) {
	ctx := context.Background()

	l, err := NewLocal(t.TempDir(), "http://x")
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../x", "a/b", `a\b`} {
		assert.ErrorIs(t, l.Save(ctx, key, strings.NewReader("x"), 1, ""), ErrInvalidKey, key)
	}

	assert.ErrorIs(t, l.Delete(ctx, "../etc/passwd"), ErrInvalidKey)

	_, err = l.Exists(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
