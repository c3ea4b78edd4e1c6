package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// SortBy selects the result ordering for a search.
type SortBy string

const (
	SortRelevance SortBy = "relevance"
	SortNewest    SortBy = "newest"
	SortOldest    SortBy = "oldest"
	SortPopular   SortBy = "popular"
)

// TimeRange restricts results to posts newer than now minus the range.
type TimeRange string

const (
	TimeRangeHour  TimeRange = "hour"
	TimeRangeDay   TimeRange = "day"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
)

// Cutoff returns the inclusive lower bound for the range, or the zero time
// when the range is empty.
func (tr TimeRange) Cutoff(now time.Time) time.Time {
	switch tr {
	case TimeRangeHour:
		return now.Add(-time.Hour)
	case TimeRangeDay:
		return now.AddDate(0, 0, -1)
	case TimeRangeWeek:
		return now.AddDate(0, 0, -7)
	case TimeRangeMonth:
		return now.AddDate(0, 0, -30)
	case TimeRangeYear:
		return now.AddDate(0, 0, -365)
	}
	return time.Time{}
}

// SearchFilters narrows a search. Values within one field match as OR, the
// fields combine as AND.
type SearchFilters struct {
	Platforms           []Platform `json:"platforms,omitempty"`
	Sentiments          []string   `json:"sentiments,omitempty"`
	Categories          []string   `json:"categories,omitempty"`
	Products            []string   `json:"products,omitempty"`
	Tags                []string   `json:"tags,omitempty"`
	TimeRange           TimeRange  `json:"time_range,omitempty"`
	MinUpvotes          int        `json:"min_upvotes,omitempty"`
	MinInteractionScore int        `json:"min_interaction_score,omitempty"`
}

// SearchRequest is one search call. Pages are one-indexed.
type SearchRequest struct {
	Query    string        `json:"query" validate:"max=500"`
	Filters  SearchFilters `json:"filters"`
	SortBy   SortBy        `json:"sort_by"`
	Page     int           `json:"page" validate:"min=1"`
	PageSize int           `json:"page_size" validate:"min=1,max=100"`
}

// SearchResult is one page of matches plus pagination totals.
type SearchResult struct {
	Results    []Demand `json:"results"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// ValidationError reports which request field was invalid.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var validate = validator.New()

// Validate rejects a malformed request before any query runs.
func (r *SearchRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return &ValidationError{
				Field:   strings.ToLower(f.Field()),
				Message: fmt.Sprintf("failed %q constraint", f.Tag()),
			}
		}
		return &ValidationError{Field: "request", Message: err.Error()}
	}

	switch r.SortBy {
	case "", SortRelevance, SortNewest, SortOldest, SortPopular:
	default:
		return &ValidationError{Field: "sort_by", Message: fmt.Sprintf("unknown sort mode %q", r.SortBy)}
	}

	for _, p := range r.Filters.Platforms {
		if p != "all" && !validPlatform(p) {
			return &ValidationError{Field: "platforms", Message: fmt.Sprintf("unknown platform %q", p)}
		}
	}
	for _, sn := range r.Filters.Sentiments {
		switch sn {
		case SentimentPositive, SentimentNegative, SentimentNeutral:
		default:
			return &ValidationError{Field: "sentiments", Message: fmt.Sprintf("unknown sentiment %q", sn)}
		}
	}
	switch r.Filters.TimeRange {
	case "", TimeRangeHour, TimeRangeDay, TimeRangeWeek, TimeRangeMonth, TimeRangeYear:
	default:
		return &ValidationError{Field: "time_range", Message: fmt.Sprintf("unknown time range %q", r.Filters.TimeRange)}
	}
	if r.Filters.MinUpvotes < 0 {
		return &ValidationError{Field: "min_upvotes", Message: "must not be negative"}
	}
	if r.Filters.MinInteractionScore < 0 {
		return &ValidationError{Field: "min_interaction_score", Message: "must not be negative"}
	}
	return nil
}

func validPlatform(p Platform) bool {
	switch p {
	case PlatformReddit, PlatformGitHub, PlatformTwitter:
		return true
	}
	return false
}

// SearchDemands runs a validated search: one count query plus one page query
// over the non-deleted demand set.
func (s *SQLiteStore) SearchDemands(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.SortBy == "" {
		req.SortBy = SortRelevance
	}

	from, where, args := buildFilterClauses(req.Query, req.Filters)

	var total int
	countSQL := "SELECT COUNT(*) " + from + " WHERE " + strings.Join(where, " AND ")
	if err := s.db.GetContext(ctx, &total, countSQL, args...); err != nil {
		return nil, fmt.Errorf("count demands: %w", err)
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize

	pageSQL := "SELECT d.* " + from + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY " + orderClause(req.SortBy, req.Query) +
		" LIMIT ? OFFSET ?"
	pageArgs := append(args, req.PageSize, (req.Page-1)*req.PageSize)

	demands := []Demand{}
	if err := s.db.SelectContext(ctx, &demands, pageSQL, pageArgs...); err != nil {
		return nil, fmt.Errorf("search demands: %w", err)
	}
	for i := range demands {
		demands[i].decodeArrays()
	}

	return &SearchResult{
		Results:    demands,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ExportDemands returns all matches for a filter set, capped at limit.
func (s *SQLiteStore) ExportDemands(ctx context.Context, query string, filters SearchFilters, limit int) ([]Demand, error) {
	if limit <= 0 {
		limit = 1000
	}

	from, where, args := buildFilterClauses(query, filters)
	sqlStr := "SELECT d.* " + from + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY d.interaction_score DESC, d.timestamp DESC LIMIT ?"
	args = append(args, limit)

	demands := []Demand{}
	if err := s.db.SelectContext(ctx, &demands, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("export demands: %w", err)
	}
	for i := range demands {
		demands[i].decodeArrays()
	}
	return demands, nil
}

// buildFilterClauses translates a query string and filter set into the FROM
// clause, WHERE conditions and bind args shared by search, count and export.
func buildFilterClauses(query string, f SearchFilters) (from string, where []string, args []any) {
	from = "FROM demands d"
	where = []string{"d.is_deleted = 0"}

	if match := ftsMatchExpr(query); match != "" {
		from += " JOIN demands_fts ON demands_fts.rowid = d.rowid"
		where = append(where, "demands_fts MATCH ?")
		args = append(args, match)
	}

	if platforms := concretePlatforms(f.Platforms); len(platforms) > 0 {
		where = append(where, "d.platform IN ("+placeholders(len(platforms))+")")
		for _, p := range platforms {
			args = append(args, p)
		}
	}

	if len(f.Sentiments) > 0 {
		where = append(where, "d.sentiment IN ("+placeholders(len(f.Sentiments))+")")
		for _, sn := range f.Sentiments {
			args = append(args, sn)
		}
	}

	if len(f.Categories) > 0 {
		where = append(where, "d.category IN ("+placeholders(len(f.Categories))+")")
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}

	if len(f.Products) > 0 {
		where = append(where, arrayContainsAny("d.product_mentioned", len(f.Products)))
		for _, p := range f.Products {
			args = append(args, p)
		}
	}

	if len(f.Tags) > 0 {
		where = append(where, arrayContainsAny("d.tags", len(f.Tags)))
		for _, t := range f.Tags {
			args = append(args, t)
		}
	}

	if cutoff := f.TimeRange.Cutoff(time.Now().UTC()); !cutoff.IsZero() {
		where = append(where, "d.timestamp >= ?")
		args = append(args, cutoff)
	}

	if f.MinUpvotes > 0 {
		where = append(where, "d.upvotes >= ?")
		args = append(args, f.MinUpvotes)
	}

	if f.MinInteractionScore > 0 {
		where = append(where, "d.interaction_score >= ?")
		args = append(args, f.MinInteractionScore)
	}

	return from, where, args
}

// concretePlatforms drops the "all" wildcard; an empty result means no
// platform restriction.
func concretePlatforms(platforms []Platform) []Platform {
	var out []Platform
	for _, p := range platforms {
		if p == "all" {
			return nil
		}
		out = append(out, p)
	}
	return out
}

// arrayContainsAny matches rows whose JSON string array column contains at
// least one of n requested values.
func arrayContainsAny(column string, n int) string {
	return "EXISTS (SELECT 1 FROM json_each(" + column + ") WHERE json_each.value IN (" + placeholders(n) + "))"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ftsMatchExpr turns free text into an FTS5 MATCH expression. Each token is
// quoted so user input cannot inject FTS operators; tokens combine as AND.
func ftsMatchExpr(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func orderClause(sortBy SortBy, query string) string {
	switch sortBy {
	case SortNewest:
		return "d.timestamp DESC"
	case SortOldest:
		return "d.timestamp ASC"
	case SortPopular:
		return "d.interaction_score DESC, d.timestamp DESC"
	}
	// Relevance: FTS rank when there is a query, interaction score otherwise.
	// bm25() is smaller-is-better.
	if ftsMatchExpr(query) != "" {
		return "bm25(demands_fts)"
	}
	return "d.interaction_score DESC"
}
