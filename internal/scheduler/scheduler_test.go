package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elonfeng/demandscope/internal/store"
	"github.com/elonfeng/demandscope/pkg/source"
)

type stubSource struct {
	platform store.Platform
	demands  []store.Demand
	err      error
	calls    int
}

func (s *stubSource) Name() store.Platform { return s.platform }

func (s *stubSource) Collect(ctx context.Context) ([]store.Demand, error) {
	s.calls++
	return s.demands, s.err
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCollectAllStoresDemands(t *testing.T) {
	db := newTestStore(t)

	good := &stubSource{
		platform: store.PlatformReddit,
		demands: []store.Demand{{
			ID:        "s1",
			Content:   "collected content",
			Platform:  store.PlatformReddit,
			SourceURL: "https://example.com/s1",
			Timestamp: time.Now().UTC(),
			Tags:      []string{"api"},
		}},
	}
	broken := &stubSource{
		platform: store.PlatformGitHub,
		err:      errors.New("rate limited"),
	}

	sched := New(db, []source.Source{good, broken}, time.Minute, time.Minute, zap.NewNop())
	sched.collectAll(context.Background())

	// One source failing never blocks the others.
	assert.Equal(t, 1, good.calls)
	assert.Equal(t, 1, broken.calls)

	got, err := db.GetDemand(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "collected content", got.Content)
}

func TestRebuildTrends(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	d := store.Demand{
		ID:        "t1",
		Content:   "tagged demand",
		Platform:  store.PlatformReddit,
		SourceURL: "https://example.com/t1",
		Timestamp: time.Now().UTC(),
		Tags:      []string{"pricing"},
	}
	require.NoError(t, db.UpsertDemand(ctx, &d))

	sched := New(db, nil, time.Minute, time.Minute, zap.NewNop())
	sched.rebuildTrends(ctx)

	topics, err := db.ListTrendingTopics(ctx, "daily", 10)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "pricing", topics[0].Topic)
}

func TestRunStopsOnCancel(t *testing.T) {
	db := newTestStore(t)

	sched := New(db, nil, time.Hour, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewDefaultsIntervals(t *testing.T) {
	sched := New(nil, nil, 0, 0, zap.NewNop())
	assert.Equal(t, 30*time.Minute, sched.collectInt)
	assert.Equal(t, time.Hour, sched.trendInt)
}
