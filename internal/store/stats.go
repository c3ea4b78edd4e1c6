package store

import (
	"context"
	"fmt"
	"time"
)

// TrendSeries is a dense per-day count of demands for each platform. Dates
// with no data carry zero, never a gap; len(Dates) equals the requested
// window.
type TrendSeries struct {
	Dates  []string         `json:"dates"`
	Series []PlatformSeries `json:"series"`
}

// PlatformSeries is one platform's numeric series over TrendSeries.Dates.
type PlatformSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

// SentimentBreakdown counts demands per sentiment label.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// PlatformComparison summarizes one platform over a time window.
type PlatformComparison struct {
	Platform    Platform           `json:"platform"`
	TotalCount  int                `json:"total_count"`
	AvgScore    float64            `json:"avg_score"`
	AvgUpvotes  float64            `json:"avg_upvotes"`
	AvgComments float64            `json:"avg_comments"`
	Sentiment   SentimentBreakdown `json:"sentiment"`
}

// TermStat is one entry of a frequency-ranked product or tag list.
type TermStat struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// PlatformStats is the per-platform category breakdown for the overview.
type PlatformStats struct {
	Platform            Platform `json:"platform"`
	TotalDemands        int      `json:"total_demands"`
	FeatureRequests     int      `json:"feature_requests"`
	BugReports          int      `json:"bug_reports"`
	Complaints          int      `json:"complaints"`
	Praises             int      `json:"praises"`
	Discussions         int      `json:"discussions"`
	AvgInteractionScore float64  `json:"avg_interaction_score"`
}

// OverviewStats is the combined payload for the statistics landing view.
type OverviewStats struct {
	TotalDemands int             `json:"total_demands"`
	Platforms    []PlatformStats `json:"platforms"`
	RecentTrends *TrendSeries    `json:"recent_trends"`
	TopProducts  []TermStat      `json:"top_products"`
	TopTags      []TermStat      `json:"top_tags"`
}

// PlatformDistribution counts non-deleted demands per platform.
func (s *SQLiteStore) PlatformDistribution(ctx context.Context) (map[Platform]int, error) {
	counts := make(map[Platform]int)
	for _, p := range AllPlatforms() {
		counts[p] = 0
	}
	rows, err := s.db.QueryxContext(ctx,
		"SELECT platform, COUNT(*) AS cnt FROM demands WHERE is_deleted = 0 GROUP BY platform")
	if err != nil {
		return nil, fmt.Errorf("platform distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		var cnt int
		if err := rows.Scan(&p, &cnt); err != nil {
			return nil, err
		}
		counts[Platform(p)] = cnt
	}
	return counts, rows.Err()
}

// SentimentDistribution counts non-deleted demands per sentiment label.
func (s *SQLiteStore) SentimentDistribution(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{
		SentimentPositive: 0,
		SentimentNegative: 0,
		SentimentNeutral:  0,
	}
	rows, err := s.db.QueryxContext(ctx,
		"SELECT sentiment, COUNT(*) AS cnt FROM demands WHERE is_deleted = 0 GROUP BY sentiment")
	if err != nil {
		return nil, fmt.Errorf("sentiment distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var cnt int
		if err := rows.Scan(&label, &cnt); err != nil {
			return nil, err
		}
		counts[label] = cnt
	}
	return counts, rows.Err()
}

// CategoryDistribution counts non-deleted demands per category label.
// Uncategorized demands are excluded.
func (s *SQLiteStore) CategoryDistribution(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	rows, err := s.db.QueryxContext(ctx,
		"SELECT category, COUNT(*) AS cnt FROM demands WHERE is_deleted = 0 AND category != '' GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("category distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var cnt int
		if err := rows.Scan(&label, &cnt); err != nil {
			return nil, err
		}
		counts[label] = cnt
	}
	return counts, rows.Err()
}

// TrendSeries builds the dense per-day series over the last days calendar
// days, ending today (UTC).
func (s *SQLiteStore) TrendSeries(ctx context.Context, days int) (*TrendSeries, error) {
	if days <= 0 {
		days = 30
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	rows, err := s.db.QueryxContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day, platform, COUNT(*) AS cnt
		FROM demands
		WHERE is_deleted = 0 AND timestamp >= ?
		GROUP BY day, platform
	`, start)
	if err != nil {
		return nil, fmt.Errorf("trend series: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]map[Platform]int)
	for rows.Next() {
		var day, platform string
		var cnt int
		if err := rows.Scan(&day, &platform, &cnt); err != nil {
			return nil, err
		}
		if byDay[day] == nil {
			byDay[day] = make(map[Platform]int)
		}
		byDay[day][Platform(platform)] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ts := &TrendSeries{Dates: make([]string, days)}
	perPlatform := make(map[Platform][]int)
	for _, p := range AllPlatforms() {
		perPlatform[p] = make([]int, days)
	}

	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		ts.Dates[i] = day
		for _, p := range AllPlatforms() {
			perPlatform[p][i] = byDay[day][p]
		}
	}
	for _, p := range AllPlatforms() {
		ts.Series = append(ts.Series, PlatformSeries{Name: string(p), Data: perPlatform[p]})
	}
	return ts, nil
}

// PlatformComparison returns per-platform totals, averages and sentiment
// breakdown restricted to the last days.
func (s *SQLiteStore) PlatformComparison(ctx context.Context, days int) ([]PlatformComparison, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.QueryxContext(ctx, `
		SELECT platform,
		       COUNT(*) AS total_count,
		       AVG(interaction_score) AS avg_score,
		       AVG(upvotes) AS avg_upvotes,
		       AVG(comments) AS avg_comments,
		       SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END) AS positive,
		       SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END) AS negative,
		       SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END) AS neutral
		FROM demands
		WHERE is_deleted = 0 AND timestamp >= ?
		GROUP BY platform
		ORDER BY total_count DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("platform comparison: %w", err)
	}
	defer rows.Close()

	comparison := []PlatformComparison{}
	for rows.Next() {
		var pc PlatformComparison
		if err := rows.Scan(&pc.Platform, &pc.TotalCount, &pc.AvgScore, &pc.AvgUpvotes,
			&pc.AvgComments, &pc.Sentiment.Positive, &pc.Sentiment.Negative, &pc.Sentiment.Neutral); err != nil {
			return nil, err
		}
		comparison = append(comparison, pc)
	}
	return comparison, rows.Err()
}

// TopProducts ranks mentioned products by frequency, tie-broken by average
// interaction score then name.
func (s *SQLiteStore) TopProducts(ctx context.Context, limit int) ([]TermStat, error) {
	return s.topTerms(ctx, "product_mentioned", limit)
}

// TopTags ranks tags by frequency, tie-broken by average interaction score
// then name.
func (s *SQLiteStore) TopTags(ctx context.Context, limit int) ([]TermStat, error) {
	return s.topTerms(ctx, "tags", limit)
}

func (s *SQLiteStore) topTerms(ctx context.Context, column string, limit int) ([]TermStat, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT json_each.value AS name, COUNT(*) AS cnt, AVG(d.interaction_score) AS avg_score
		FROM demands d, json_each(d.`+column+`)
		WHERE d.is_deleted = 0
		GROUP BY name
		ORDER BY cnt DESC, avg_score DESC, name ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()

	terms := []TermStat{}
	for rows.Next() {
		var t TermStat
		if err := rows.Scan(&t.Name, &t.Count, &t.AvgScore); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// Overview assembles the statistics landing payload: totals, per-platform
// category breakdown, a 7-day trend window and top products/tags.
func (s *SQLiteStore) Overview(ctx context.Context) (*OverviewStats, error) {
	var total int
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM demands WHERE is_deleted = 0"); err != nil {
		return nil, fmt.Errorf("total demands: %w", err)
	}

	byPlatform := make(map[Platform]*PlatformStats)
	for _, p := range AllPlatforms() {
		byPlatform[p] = &PlatformStats{Platform: p}
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT platform, COUNT(*) AS cnt, AVG(interaction_score) AS avg_score
		FROM demands WHERE is_deleted = 0 GROUP BY platform
	`)
	if err != nil {
		return nil, fmt.Errorf("platform totals: %w", err)
	}
	for rows.Next() {
		var p string
		var cnt int
		var avg float64
		if err := rows.Scan(&p, &cnt, &avg); err != nil {
			rows.Close()
			return nil, err
		}
		if ps := byPlatform[Platform(p)]; ps != nil {
			ps.TotalDemands = cnt
			ps.AvgInteractionScore = avg
		}
	}
	rows.Close()

	rows, err = s.db.QueryxContext(ctx, `
		SELECT platform, category, COUNT(*) AS cnt
		FROM demands WHERE is_deleted = 0 AND category != ''
		GROUP BY platform, category
	`)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	for rows.Next() {
		var p, category string
		var cnt int
		if err := rows.Scan(&p, &category, &cnt); err != nil {
			rows.Close()
			return nil, err
		}
		ps := byPlatform[Platform(p)]
		if ps == nil {
			continue
		}
		switch category {
		case CategoryFeatureRequest:
			ps.FeatureRequests = cnt
		case CategoryBugReport:
			ps.BugReports = cnt
		case CategoryComplaint:
			ps.Complaints = cnt
		case CategoryPraise:
			ps.Praises = cnt
		case CategoryDiscussion:
			ps.Discussions = cnt
		}
	}
	rows.Close()

	trends, err := s.TrendSeries(ctx, 7)
	if err != nil {
		return nil, err
	}
	products, err := s.TopProducts(ctx, 10)
	if err != nil {
		return nil, err
	}
	tags, err := s.TopTags(ctx, 10)
	if err != nil {
		return nil, err
	}

	overview := &OverviewStats{
		TotalDemands: total,
		RecentTrends: trends,
		TopProducts:  products,
		TopTags:      tags,
	}
	for _, p := range AllPlatforms() {
		overview.Platforms = append(overview.Platforms, *byPlatform[p])
	}
	return overview, nil
}
