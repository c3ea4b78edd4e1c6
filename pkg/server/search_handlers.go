package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
	"go.uber.org/zap"
)

type searchResponse struct {
	Results        []store.Demand      `json:"results"`
	Total          int                 `json:"total"`
	Page           int                 `json:"page"`
	PageSize       int                 `json:"page_size"`
	TotalPages     int                 `json:"total_pages"`
	Query          string              `json:"query"`
	FiltersApplied store.SearchFilters `json:"filters_applied"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req store.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldError(w, "body", "malformed JSON")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	result, err := s.store.SearchDemands(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	// History logging never blocks or fails the search response.
	s.logSearch(req, result.Total)

	writeJSON(w, http.StatusOK, searchResponse{
		Results:        result.Results,
		Total:          result.Total,
		Page:           result.Page,
		PageSize:       result.PageSize,
		TotalPages:     result.TotalPages,
		Query:          req.Query,
		FiltersApplied: req.Filters,
	})
}

// logSearch appends to the search history on a detached context so a slow or
// failed insert cannot affect the caller.
func (s *Server) logSearch(req store.SearchRequest, resultCount int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := s.store.RecordSearch(ctx, store.SearchHistoryEntry{
			Query:       req.Query,
			Filters:     req.Filters,
			ResultCount: resultCount,
		})
		if err != nil {
			s.logger.Debug("search history write failed", zap.Error(err))
		}
	}()
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) < 2 {
		writeFieldError(w, "q", "must be at least 2 characters")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	suggestions, err := s.store.SuggestQueries(r.Context(), q, limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestions)
}
