package source

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/demandscope/internal/store"
)

func TestAnalyzeCategorization(t *testing.T) {
	cases := []struct {
		name     string
		title    string
		content  string
		category string
	}{
		{"feature request", "Please add offline mode", "would be great for flights", store.CategoryFeatureRequest},
		{"complaint", "This is so slow", "the editor lags on large docs", store.CategoryComplaint},
		{"bug report", "App crash on startup", "it stopped working after the update", store.CategoryBugReport},
		{"praise", "Love this tool", "saved me hours every week", store.CategoryPraise},
		{"discussion", "What do you use for notes?", "anyone compared the options?", store.CategoryDiscussion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, ok := Analyze(tc.title, tc.content)
			require.True(t, ok)
			assert.Equal(t, tc.category, a.Category)
		})
	}
}

func TestAnalyzeDropsNonDemands(t *testing.T) {
	_, ok := Analyze("Weekly standup notes", "sprint planning recap for the team")
	assert.False(t, ok)
}

func TestAnalyzeCategoryPrecedence(t *testing.T) {
	// Matches both feature-request and bug keywords; the first bucket wins.
	a, ok := Analyze("Please add a fix", "there is a bug and i wish it worked differently")
	require.True(t, ok)
	assert.Equal(t, store.CategoryFeatureRequest, a.Category)
}

func TestAnalyzeSentiment(t *testing.T) {
	a, ok := Analyze("Love it, great and awesome", "works well, thoughts?")
	require.True(t, ok)
	assert.Equal(t, store.SentimentPositive, a.Sentiment)
	assert.Greater(t, a.SentimentScore, 0.6)

	a, ok = Analyze("Terrible and broken", "hate how slow and useless this is")
	require.True(t, ok)
	assert.Equal(t, store.SentimentNegative, a.Sentiment)
	assert.Less(t, a.SentimentScore, 0.4)

	a, ok = Analyze("How do you configure webhooks?", "anyone set this up before?")
	require.True(t, ok)
	assert.Equal(t, store.SentimentNeutral, a.Sentiment)
	assert.InDelta(t, 0.5, a.SentimentScore, 0.001)
}

func TestAnalyzeProductsAndTags(t *testing.T) {
	a, ok := Analyze("Notion API is frustrating", "the notion api webhook support is too expensive")
	require.True(t, ok)

	assert.Contains(t, a.Products, "notion")
	assert.Contains(t, a.Tags, store.CategoryComplaint)
	assert.Contains(t, a.Tags, "api")
	assert.Contains(t, a.Tags, "pricing")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "hello world", stripHTML("<p>hello <b>world</b></p>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))

	// Multibyte content is cut on rune boundaries, never mid-sequence.
	got := truncate("héllo wörld", 6)
	assert.Equal(t, "héllo ...", got)
	assert.True(t, utf8.ValidString(got))
}
