package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SearchHistoryEntry is one appended log record of an executed search.
// Entries are never mutated after insert.
type SearchHistoryEntry struct {
	Query       string
	UserID      string
	Filters     SearchFilters
	ResultCount int
}

// TrendingTopic is a time-bucketed aggregate of mentions of one topic on one
// platform, keyed by (topic, platform, date, period).
type TrendingTopic struct {
	ID               int64     `json:"id" db:"id"`
	Topic            string    `json:"topic" db:"topic"`
	Platform         Platform  `json:"platform" db:"platform"`
	Date             string    `json:"date" db:"date"`
	Period           string    `json:"period" db:"period"`
	MentionCount     int       `json:"mention_count" db:"mention_count"`
	TotalInteraction int       `json:"total_interaction" db:"total_interaction"`
	AvgSentiment     float64   `json:"avg_sentiment" db:"avg_sentiment"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// RecordSearch appends a search to the history log.
func (s *SQLiteStore) RecordSearch(ctx context.Context, entry SearchHistoryEntry) error {
	filtersJSON, _ := json.Marshal(entry.Filters)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (id, query, user_id, filters, result_count, has_results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), entry.Query, entry.UserID, string(filtersJSON),
		entry.ResultCount, entry.ResultCount > 0, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// SuggestQueries returns distinct prior queries containing the partial
// string, most frequent first.
func (s *SQLiteStore) SuggestQueries(ctx context.Context, partial string, limit int) ([]string, error) {
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	pattern := "%" + escapeLike(partial) + "%"

	suggestions := []string{}
	err := s.db.SelectContext(ctx, &suggestions, `
		SELECT query FROM search_history
		WHERE query LIKE ? ESCAPE '\'
		GROUP BY query
		ORDER BY COUNT(*) DESC, query ASC
		LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest queries: %w", err)
	}
	return suggestions, nil
}

// RebuildDailyTrends recomputes daily trending-topic rollups for demands
// collected since the cutoff. Existing buckets are overwritten in place.
func (s *SQLiteStore) RebuildDailyTrends(ctx context.Context, since time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trending_topics (topic, platform, date, period, mention_count, total_interaction, avg_sentiment, updated_at)
		SELECT json_each.value, d.platform, substr(d.timestamp, 1, 10), 'daily',
		       COUNT(*), SUM(d.interaction_score), AVG(d.sentiment_score), ?
		FROM demands d, json_each(d.tags)
		WHERE d.is_deleted = 0 AND d.timestamp >= ?
		GROUP BY json_each.value, d.platform, substr(d.timestamp, 1, 10)
		ON CONFLICT(topic, platform, date, period) DO UPDATE SET
			mention_count = excluded.mention_count,
			total_interaction = excluded.total_interaction,
			avg_sentiment = excluded.avg_sentiment,
			updated_at = excluded.updated_at
	`, time.Now().UTC(), since)
	if err != nil {
		return fmt.Errorf("rebuild daily trends: %w", err)
	}
	return nil
}

// ListTrendingTopics returns the strongest recent buckets for a period.
func (s *SQLiteStore) ListTrendingTopics(ctx context.Context, period string, limit int) ([]TrendingTopic, error) {
	if period == "" {
		period = "daily"
	}
	if limit <= 0 {
		limit = 20
	}

	topics := []TrendingTopic{}
	err := s.db.SelectContext(ctx, &topics, `
		SELECT * FROM trending_topics
		WHERE period = ?
		ORDER BY date DESC, mention_count DESC, topic ASC
		LIMIT ?
	`, period, limit)
	if err != nil {
		return nil, fmt.Errorf("list trending topics: %w", err)
	}
	return topics, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
