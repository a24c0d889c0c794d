package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "db", "parity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	run, err := s.StartRun(KindE2E, "http://localhost:9212/search/")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusRunning, run.Status)

	require.NoError(t, s.FinishRun(run.ID, StatusFailed, errors.New("Filter section not found!")))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, KindE2E, got.Kind)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "Filter section not found!", got.Error)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.After(got.StartedAt))
}

func TestFinishRun_Unknown(t *testing.T) {
	s := newTestStore(t)

	err := s.FinishRun("missing", StatusPassed, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	first, err := s.StartRun(KindValidate, "index.html")
	require.NoError(t, err)
	second, err := s.StartRun(KindAnalyze, "https://app.split.lease/search")
	require.NoError(t, err)
	third, err := s.StartRun(KindCapture, "http://localhost:9214/")
	require.NoError(t, err)

	runs, err := s.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, third.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)
	assert.Nil(t, runs[0].FinishedAt)

	all, err := s.RecentRuns(10)
	require.NoError(t, err)
	assert.Equal(t, first.ID, all[2].ID)
}

func TestArtifacts(t *testing.T) {
	s := newTestStore(t)

	run, err := s.StartRun(KindE2E, "local")
	require.NoError(t, err)
	other, err := s.StartRun(KindE2E, "other")
	require.NoError(t, err)

	require.NoError(t, s.AddArtifact(run.ID, ArtifactScreenshot, "01_local_initial_page.png"))
	require.NoError(t, s.AddArtifact(other.ID, ArtifactScreenshot, "ignored.png"))
	require.NoError(t, s.AddArtifact(run.ID, ArtifactResult, "result.json"))

	arts, err := s.Artifacts(run.ID)
	require.NoError(t, err)
	require.Len(t, arts, 2)
	assert.Equal(t, ArtifactScreenshot, arts[0].Kind)
	assert.Equal(t, "01_local_initial_page.png", arts[0].Path)
	assert.Equal(t, ArtifactResult, arts[1].Kind)
}
