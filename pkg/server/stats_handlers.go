package server

import (
	"net/http"
	"strconv"
)

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.store.Overview(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handlePlatformDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.PlatformDistribution(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleSentimentDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.SentimentDistribution(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CategoryDistribution(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 30)
	trends, err := s.store.TrendSeries(r.Context(), days)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

// handleCharts bundles the datasets the dashboard renders in one round trip.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 30)
	ctx := r.Context()

	trends, err := s.store.TrendSeries(ctx, days)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	platforms, err := s.store.PlatformDistribution(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	sentiments, err := s.store.SentimentDistribution(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	categories, err := s.store.CategoryDistribution(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trends":     trends,
		"platforms":  platforms,
		"sentiments": sentiments,
		"categories": categories,
	})
}

func (s *Server) handlePlatformComparison(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 30)
	comparison, err := s.store.PlatformComparison(r.Context(), days)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 20)
	products, err := s.store.TopProducts(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleTopTags(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 20)
	tags, err := s.store.TopTags(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleTrendingTopics(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	limit := intQuery(r, "limit", 20)
	topics, err := s.store.ListTrendingTopics(r.Context(), period, limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

