package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/elonfeng/demandscope/internal/store"
)

type collectResult struct {
	Platform  store.Platform `json:"platform"`
	Collected int            `json:"collected"`
	Stored    int            `json:"stored"`
	Error     string         `json:"error,omitempty"`
}

// handleCollect runs the configured sources once and upserts what they
// return. A platform query parameter restricts the run to one source.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	only := store.Platform(r.URL.Query().Get("platform"))

	results := []collectResult{}
	for _, src := range s.sources {
		if only != "" && src.Name() != only {
			continue
		}

		res := collectResult{Platform: src.Name()}
		demands, err := src.Collect(r.Context())
		if err != nil {
			s.logger.Warn("collection failed",
				zap.String("source", string(src.Name())), zap.Error(err))
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Collected = len(demands)

		stored, err := s.store.UpsertDemands(r.Context(), demands)
		if err != nil {
			res.Error = err.Error()
		}
		res.Stored = stored
		results = append(results, res)
	}

	if only != "" && len(results) == 0 {
		writeFieldError(w, "platform", "no source configured for platform")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
