package history

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flakelab/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStartAndFinish(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Start(ctx, "deploy", "markets", "demo_connection")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	run, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, "markets", run.Target)
	assert.True(t, run.FinishedAt.IsZero())
	assert.Zero(t, run.Duration())

	require.NoError(t, s.Finish(ctx, id, StatusSucceeded, "7 steps"))

	run, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, run.Status)
	assert.Equal(t, "7 steps", run.Detail)
	assert.Equal(t, time.Second, run.Duration())
}

func TestListOrdersSubsecondStarts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)
	starts := []time.Time{base, base.Add(100 * time.Millisecond), base.Add(time.Second)}
	var ids []string
	for _, at := range starts {
		at := at
		s.now = func() time.Time { return at }
		id, err := s.Start(ctx, "export", "markets", "default")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.True(t, runs[2].StartedAt.Equal(base))
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, cmd := range []string{"deploy", "lab", "cleanup"} {
		_, err := s.Start(ctx, cmd, "markets", "demo_connection")
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "cleanup", runs[0].Command)
	assert.Equal(t, "deploy", runs[2].Command)

	runs, err = s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestMissingRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetErrorCode(err))

	err = s.Finish(ctx, "nope", StatusFailed, "")
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetErrorCode(err))
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Start(context.Background(), "lab", "full", "demo_connection")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	run, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "lab", run.Command)
}

func TestRecorder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := NewRecorder(s, zap.NewNop())

	ok := rec.Start(ctx, "deploy", "markets", "demo_connection")
	rec.Finish(ctx, ok, nil, "")
	bad := rec.Start(ctx, "cleanup", "markets", "demo_connection")
	rec.Finish(ctx, bad, stderrors.New("boom"), "")

	run, err := s.Get(ctx, ok)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, run.Status)

	run, err = s.Get(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "boom", run.Detail)
}

func TestRecorderSwallowsErrors(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	core, logs := observer.New(zapcore.WarnLevel)
	rec := NewRecorder(s, zap.New(core))
	assert.Empty(t, rec.Start(context.Background(), "deploy", "markets", "x"))
	assert.Equal(t, 1, logs.FilterMessage("Could not record run in history").Len())

	var disabled *Recorder
	assert.Empty(t, disabled.Start(context.Background(), "deploy", "markets", "x"))
	disabled.Finish(context.Background(), "id", nil, "")
	NewRecorder(nil, nil).Finish(context.Background(), "id", nil, "")
}
