package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// testDemand builds a minimal valid demand; callers override what they need.
func testDemand(id string, platform Platform) Demand {
	return Demand{
		ID:        id,
		Content:   "some content about " + id,
		Platform:  platform,
		SourceURL: "https://example.com/" + id,
		Author:    "author-" + id,
		Timestamp: time.Now().UTC(),
		Sentiment: SentimentNeutral,
	}
}

func seed(t *testing.T, s *SQLiteStore, demands ...Demand) {
	t.Helper()
	for i := range demands {
		require.NoError(t, s.UpsertDemand(context.Background(), &demands[i]))
	}
}

func TestUpsertComputesInteractionScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := testDemand("d1", PlatformReddit)
	d.Upvotes = 10
	d.Comments = 5
	d.Shares = 2
	require.NoError(t, s.UpsertDemand(ctx, &d))

	got, err := s.GetDemand(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 10+5*2+2*3, got.InteractionScore)
}

func TestUpsertBySourceURLRefreshesCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := testDemand("d1", PlatformReddit)
	d.Upvotes = 1
	d.Category = CategoryFeatureRequest
	require.NoError(t, s.UpsertDemand(ctx, &d))

	// Re-collection of the same post: same source_url, new counters.
	again := testDemand("d1-second-pass", PlatformReddit)
	again.SourceURL = d.SourceURL
	again.Upvotes = 42
	again.Comments = 3
	require.NoError(t, s.UpsertDemand(ctx, &again))

	got, err := s.GetDemand(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Upvotes)
	assert.Equal(t, 42+3*2, got.InteractionScore)
	// Analysis fields survive the refresh.
	assert.Equal(t, CategoryFeatureRequest, got.Category)

	// No second row was created.
	var count int
	require.NoError(t, s.db.Get(&count, "SELECT COUNT(*) FROM demands"))
	assert.Equal(t, 1, count)
}

func TestUpsertDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := Demand{
		Content:   "bare minimum",
		Platform:  PlatformGitHub,
		SourceURL: "https://github.com/o/r/issues/1",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, s.UpsertDemand(ctx, &d))
	require.NotEmpty(t, d.ID)

	got, err := s.GetDemand(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, SentimentNeutral, got.Sentiment)
	assert.Equal(t, "en", got.Language)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func TestGetDemandNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDemand(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s, testDemand("d1", PlatformReddit))
	require.NoError(t, s.SoftDeleteDemand(ctx, "d1"))

	_, err := s.GetDemand(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotFound)

	// The row itself is kept.
	var count int
	require.NoError(t, s.db.Get(&count, "SELECT COUNT(*) FROM demands WHERE id = 'd1'"))
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, s.SoftDeleteDemand(ctx, "missing"), ErrNotFound)
}

func TestMarkProcessed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s, testDemand("d1", PlatformTwitter))
	require.NoError(t, s.MarkProcessed(ctx, "d1"))

	got, err := s.GetDemand(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
}

func TestUpsertDemandsBatch(t *testing.T) {
	s := newTestStore(t)

	n, err := s.UpsertDemands(context.Background(), []Demand{
		testDemand("a", PlatformReddit),
		testDemand("b", PlatformGitHub),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
