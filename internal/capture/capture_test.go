package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "shot.png")

	require.NoError(t, writeFile(path, []byte("png")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestDefaultSession(t *testing.T) {
	names := map[string]bool{}
	for _, shot := range DefaultSession {
		assert.False(t, names[shot.Name], "duplicate shot %s", shot.Name)
		names[shot.Name] = true

		if shot.Selector == "" {
			assert.Positive(t, shot.Width, shot.Name)
			assert.Positive(t, shot.Height, shot.Name)
		}
	}
}

func TestRunWithin_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunWithin(ctx, time.Minute, FullPage(filepath.Join(t.TempDir(), "shot.png")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithin_ExpiredDeadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := RunWithin(ctx, time.Minute, Element(".filter-section", filepath.Join(t.TempDir(), "shot.png")))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNavigate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Navigate(ctx, "http://localhost:9212/search/", time.Second, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_CancelledContextWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	written, err := Run(ctx, zap.NewNop(), "http://localhost:9212/search/", dir, time.Second, 0, DefaultSession)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
