package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchReq(query string, mod func(*SearchRequest)) SearchRequest {
	req := SearchRequest{
		Query:    query,
		SortBy:   SortRelevance,
		Page:     1,
		PageSize: 20,
	}
	if mod != nil {
		mod(&req)
	}
	return req
}

func TestSearchPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Three demands with distinct popularity.
	d1 := testDemand("t1", PlatformReddit)
	d1.Upvotes = 1
	d2 := testDemand("t2", PlatformReddit)
	d2.Upvotes = 50
	d3 := testDemand("t3", PlatformReddit)
	d3.Upvotes = 100
	seed(t, s, d1, d2, d3)

	res, err := s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.SortBy = SortPopular
		r.PageSize = 2
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "t3", res.Results[0].ID)
	assert.Equal(t, "t2", res.Results[1].ID)

	// Second page holds the remainder.
	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.SortBy = SortPopular
		r.Page = 2
		r.PageSize = 2
	}))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "t1", res.Results[0].ID)

	// Beyond the last page: empty results, same totals.
	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Page = 99
		r.PageSize = 2
	}))
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
}

func TestSearchFullText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d1 := testDemand("m1", PlatformReddit)
	d1.Title = "Need better export options"
	d1.Content = "I wish the tool could export to spreadsheets"
	d2 := testDemand("m2", PlatformReddit)
	d2.Title = "Dark mode please"
	d2.Content = "the bright interface hurts at night"
	seed(t, s, d1, d2)

	res, err := s.SearchDemands(ctx, searchReq("export", nil))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "m1", res.Results[0].ID)

	// Quotes in the query must not break the match expression.
	res, err = s.SearchDemands(ctx, searchReq(`export "spreadsheets"`, nil))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	// Title text is searchable too.
	res, err = s.SearchDemands(ctx, searchReq("dark mode", nil))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "m2", res.Results[0].ID)

	res, err = s.SearchDemands(ctx, searchReq("nonexistentword", nil))
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.TotalPages)
}

func TestSearchPlatformFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s,
		testDemand("r1", PlatformReddit),
		testDemand("g1", PlatformGitHub),
		testDemand("x1", PlatformTwitter),
	)

	res, err := s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.Platforms = []Platform{PlatformReddit, PlatformGitHub}
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	for _, d := range res.Results {
		assert.NotEqual(t, PlatformTwitter, d.Platform)
	}

	// The "all" wildcard disables the platform filter entirely.
	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.Platforms = []Platform{"all"}
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
}

func TestSearchCombinedFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d1 := testDemand("c1", PlatformReddit)
	d1.Sentiment = SentimentNegative
	d1.Category = CategoryComplaint
	d1.Tags = []string{"pricing"}
	d2 := testDemand("c2", PlatformReddit)
	d2.Sentiment = SentimentNegative
	d2.Category = CategoryBugReport
	d2.Tags = []string{"performance"}
	d3 := testDemand("c3", PlatformGitHub)
	d3.Sentiment = SentimentNegative
	d3.Category = CategoryComplaint
	d3.Tags = []string{"pricing"}
	seed(t, s, d1, d2, d3)

	// Fields combine as AND: reddit AND negative AND complaint.
	res, err := s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.Platforms = []Platform{PlatformReddit}
		r.Filters.Sentiments = []string{SentimentNegative}
		r.Filters.Categories = []string{CategoryComplaint}
	}))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "c1", res.Results[0].ID)

	// Values within one field combine as OR.
	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.Categories = []string{CategoryComplaint, CategoryBugReport}
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	// Tag containment matches against the JSON array column.
	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.Tags = []string{"pricing"}
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestSearchMinBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d1 := testDemand("b1", PlatformReddit)
	d1.Upvotes = 5
	d2 := testDemand("b2", PlatformReddit)
	d2.Upvotes = 100
	seed(t, s, d1, d2)

	res, err := s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.MinUpvotes = 50
	}))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "b2", res.Results[0].ID)

	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.MinInteractionScore = 101
	}))
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestSearchTimeRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recent := testDemand("recent", PlatformReddit)
	recent.Timestamp = time.Now().UTC().Add(-time.Hour)
	old := testDemand("old", PlatformReddit)
	old.Timestamp = time.Now().UTC().AddDate(0, 0, -60)
	seed(t, s, recent, old)

	res, err := s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) {
		r.Filters.TimeRange = TimeRangeWeek
	}))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "recent", res.Results[0].ID)
}

func TestSearchSortOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	oldest := testDemand("s-old", PlatformReddit)
	oldest.Timestamp = time.Now().UTC().AddDate(0, 0, -2)
	newest := testDemand("s-new", PlatformReddit)
	newest.Timestamp = time.Now().UTC()
	seed(t, s, oldest, newest)

	res, err := s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) { r.SortBy = SortNewest }))
	require.NoError(t, err)
	assert.Equal(t, "s-new", res.Results[0].ID)

	res, err = s.SearchDemands(ctx, searchReq("", func(r *SearchRequest) { r.SortBy = SortOldest }))
	require.NoError(t, err)
	assert.Equal(t, "s-old", res.Results[0].ID)
}

func TestSearchExcludesDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s, testDemand("keep", PlatformReddit), testDemand("gone", PlatformReddit))
	require.NoError(t, s.SoftDeleteDemand(ctx, "gone"))

	res, err := s.SearchDemands(ctx, searchReq("", nil))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "keep", res.Results[0].ID)
}

func TestSearchValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		mod   func(*SearchRequest)
		field string
	}{
		{"zero page", func(r *SearchRequest) { r.Page = 0 }, "page"},
		{"oversized page size", func(r *SearchRequest) { r.PageSize = 101 }, "pagesize"},
		{"unknown sort", func(r *SearchRequest) { r.SortBy = "bogus" }, "sort_by"},
		{"unknown platform", func(r *SearchRequest) { r.Filters.Platforms = []Platform{"myspace"} }, "platforms"},
		{"unknown sentiment", func(r *SearchRequest) { r.Filters.Sentiments = []string{"angry"} }, "sentiments"},
		{"unknown time range", func(r *SearchRequest) { r.Filters.TimeRange = "decade" }, "time_range"},
		{"negative min upvotes", func(r *SearchRequest) { r.Filters.MinUpvotes = -1 }, "min_upvotes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SearchDemands(ctx, searchReq("", tc.mod))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestExportDemands(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := testDemand("e-low", PlatformReddit)
	low.Upvotes = 1
	high := testDemand("e-high", PlatformReddit)
	high.Upvotes = 99
	other := testDemand("e-other", PlatformGitHub)
	seed(t, s, low, high, other)

	demands, err := s.ExportDemands(ctx, "", SearchFilters{
		Platforms: []Platform{PlatformReddit},
	}, 10)
	require.NoError(t, err)
	require.Len(t, demands, 2)
	assert.Equal(t, "e-high", demands[0].ID)

	// The cap applies after ordering.
	demands, err = s.ExportDemands(ctx, "", SearchFilters{}, 1)
	require.NoError(t, err)
	require.Len(t, demands, 1)
	assert.Equal(t, "e-high", demands[0].ID)
}
