package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
	"github.com/elonfeng/demandscope/pkg/export"
	"go.uber.org/zap"
)

// handleExport streams the matching demand set in the requested format. The
// filters mirror the search body but arrive as flattened query parameters.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	switch format {
	case "csv", "json", "pdf":
	default:
		writeFieldError(w, "format", fmt.Sprintf("unknown format %q", format))
		return
	}

	filters := store.SearchFilters{
		Sentiments: splitParam(q.Get("sentiments")),
		Categories: splitParam(q.Get("categories")),
		Products:   splitParam(q.Get("products")),
		Tags:       splitParam(q.Get("tags")),
		TimeRange:  store.TimeRange(q.Get("time_range")),
	}
	for _, p := range splitParam(q.Get("platforms")) {
		filters.Platforms = append(filters.Platforms, store.Platform(p))
	}
	if raw := q.Get("min_upvotes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeFieldError(w, "min_upvotes", "must be an integer")
			return
		}
		filters.MinUpvotes = n
	}
	if raw := q.Get("min_interaction_score"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeFieldError(w, "min_interaction_score", "must be an integer")
			return
		}
		filters.MinInteractionScore = n
	}

	// Reuse the search validation for the filter enums.
	req := store.SearchRequest{Query: q.Get("query"), Filters: filters, Page: 1, PageSize: 1}
	if err := req.Validate(); err != nil {
		s.writeStoreError(w, err)
		return
	}

	limit := s.cfg.Export.MaxRows
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeFieldError(w, "limit", "must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	demands, err := s.store.ExportDemands(r.Context(), req.Query, filters, limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=demands-%s.csv", stamp))
		if err := export.WriteCSV(w, demands); err != nil {
			s.logger.Error("csv export failed", zap.Error(err))
		}
	case "json":
		report := export.BuildReport(req.Query, filters, limit, demands)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=demands-%s.json", stamp))
		if err := report.WriteJSON(w); err != nil {
			s.logger.Error("json export failed", zap.Error(err))
		}
	case "pdf":
		report := export.BuildReport(req.Query, filters, limit, demands)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=demands-%s.pdf", stamp))
		if err := report.WritePDF(w); err != nil {
			s.logger.Error("pdf export failed", zap.Error(err))
		}
	}
}

func (s *Server) handleExportBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := s.store.ListBookmarks(r.Context(), userID(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookmarks-%s.csv", stamp))
	if err := export.WriteBookmarksCSV(w, bookmarks); err != nil {
		s.logger.Error("bookmark export failed", zap.Error(err))
	}
}

// splitParam parses a comma-separated query parameter, ignoring empty parts.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
