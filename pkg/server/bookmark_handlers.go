package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elonfeng/demandscope/internal/store"
)

type createBookmarkRequest struct {
	DemandID       string   `json:"demand_id"`
	CustomNotes    string   `json:"custom_notes"`
	CustomTags     []string `json:"custom_tags"`
	CustomCategory string   `json:"custom_category"`
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldError(w, "body", "malformed JSON")
		return
	}
	if req.DemandID == "" {
		writeFieldError(w, "demand_id", "is required")
		return
	}

	b := &store.Bookmark{
		UserID:         userID(r),
		DemandID:       req.DemandID,
		CustomNotes:    req.CustomNotes,
		CustomTags:     req.CustomTags,
		CustomCategory: req.CustomCategory,
	}
	if err := s.store.CreateBookmark(r.Context(), b); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := s.store.ListBookmarks(r.Context(), userID(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBookmark(r.Context(), userID(r), chi.URLParam(r, "bookmarkID"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) {
	var upd store.BookmarkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeFieldError(w, "body", "malformed JSON")
		return
	}

	b, err := s.store.UpdateBookmark(r.Context(), userID(r), chi.URLParam(r, "bookmarkID"), upd)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBookmark(r.Context(), userID(r), chi.URLParam(r, "bookmarkID")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckBookmarked(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.CheckBookmarked(r.Context(), userID(r), chi.URLParam(r, "demandID"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookmarked": b != nil,
		"bookmark":   b,
	})
}
