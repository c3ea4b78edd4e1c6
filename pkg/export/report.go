package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
)

// Criteria records the filter set a report was generated from.
type Criteria struct {
	Query   string              `json:"query,omitempty"`
	Filters store.SearchFilters `json:"filters"`
	Limit   int                 `json:"limit"`
}

// Summary holds the aggregate breakdowns of the exported set.
type Summary struct {
	TotalDemands       int            `json:"total_demands"`
	PlatformBreakdown  map[string]int `json:"platform_breakdown"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	CategoryBreakdown  map[string]int `json:"category_breakdown"`
}

// Report is the full export payload: criteria, summary, rows.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Criteria    Criteria       `json:"search_criteria"`
	Summary     Summary        `json:"summary"`
	Data        []store.Demand `json:"data"`
}

// BuildReport assembles a report over an already-fetched demand set.
func BuildReport(query string, filters store.SearchFilters, limit int, demands []store.Demand) *Report {
	summary := Summary{
		TotalDemands:       len(demands),
		PlatformBreakdown:  map[string]int{},
		SentimentBreakdown: map[string]int{},
		CategoryBreakdown:  map[string]int{},
	}
	for i := range demands {
		d := &demands[i]
		summary.PlatformBreakdown[string(d.Platform)]++
		summary.SentimentBreakdown[d.Sentiment]++
		if d.Category != "" {
			summary.CategoryBreakdown[d.Category]++
		}
	}

	return &Report{
		GeneratedAt: time.Now().UTC(),
		Criteria:    Criteria{Query: query, Filters: filters, Limit: limit},
		Summary:     summary,
		Data:        demands,
	}
}

// WriteJSON serializes the report, indented for human consumption.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
