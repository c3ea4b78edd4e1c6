package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bookmark is a user's saved reference to a demand with private annotations.
type Bookmark struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	DemandID       string    `json:"demand_id" db:"demand_id"`
	CustomNotes    string    `json:"custom_notes,omitempty" db:"custom_notes"`
	CustomTags     []string  `json:"custom_tags" db:"-"`
	CustomCategory string    `json:"custom_category,omitempty" db:"custom_category"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	CustomTagsJSON string `json:"-" db:"custom_tags"`

	// Demand is the joined row, populated on reads.
	Demand *Demand `json:"demand,omitempty" db:"-"`
}

// BookmarkUpdate carries the mutable bookmark fields; nil means unchanged.
type BookmarkUpdate struct {
	CustomNotes    *string   `json:"custom_notes"`
	CustomTags     *[]string `json:"custom_tags"`
	CustomCategory *string   `json:"custom_category"`
}

// CreateBookmark saves a demand for a user. Returns ErrNotFound when the
// demand does not exist and ErrConflict when the user already bookmarked it.
func (s *SQLiteStore) CreateBookmark(ctx context.Context, b *Bookmark) error {
	demand, err := s.GetDemand(ctx, b.DemandID)
	if err != nil {
		return err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	tagsJSON, _ := json.Marshal(emptyIfNil(b.CustomTags))
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_bookmarks (id, user_id, demand_id, custom_notes, custom_tags, custom_category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.UserID, b.DemandID, b.CustomNotes, string(tagsJSON), b.CustomCategory, now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("bookmark for demand %s: %w", b.DemandID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create bookmark: %w", err)
	}

	b.Demand = demand
	return nil
}

// ListBookmarks returns all of a user's bookmarks, newest first, each joined
// with its demand.
func (s *SQLiteStore) ListBookmarks(ctx context.Context, userID string) ([]Bookmark, error) {
	bookmarks := []Bookmark{}
	err := s.db.SelectContext(ctx, &bookmarks,
		"SELECT * FROM user_bookmarks WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	for i := range bookmarks {
		bookmarks[i].decode()
		demand, err := s.GetDemand(ctx, bookmarks[i].DemandID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		bookmarks[i].Demand = demand
	}
	return bookmarks, nil
}

// GetBookmark returns one bookmark by id, scoped to its owner.
func (s *SQLiteStore) GetBookmark(ctx context.Context, userID, bookmarkID string) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b,
		"SELECT * FROM user_bookmarks WHERE id = ? AND user_id = ?", bookmarkID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bookmark %s: %w", bookmarkID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark %s: %w", bookmarkID, err)
	}
	b.decode()

	demand, err := s.GetDemand(ctx, b.DemandID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	b.Demand = demand
	return &b, nil
}

// UpdateBookmark changes the custom fields of an owned bookmark.
func (s *SQLiteStore) UpdateBookmark(ctx context.Context, userID, bookmarkID string, upd BookmarkUpdate) (*Bookmark, error) {
	b, err := s.GetBookmark(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}

	if upd.CustomNotes != nil {
		b.CustomNotes = *upd.CustomNotes
	}
	if upd.CustomTags != nil {
		b.CustomTags = *upd.CustomTags
	}
	if upd.CustomCategory != nil {
		b.CustomCategory = *upd.CustomCategory
	}
	b.UpdatedAt = time.Now().UTC()

	tagsJSON, _ := json.Marshal(emptyIfNil(b.CustomTags))
	_, err = s.db.ExecContext(ctx, `
		UPDATE user_bookmarks
		SET custom_notes = ?, custom_tags = ?, custom_category = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, b.CustomNotes, string(tagsJSON), b.CustomCategory, b.UpdatedAt, bookmarkID, userID)
	if err != nil {
		return nil, fmt.Errorf("update bookmark %s: %w", bookmarkID, err)
	}
	return b, nil
}

// DeleteBookmark removes an owned bookmark.
func (s *SQLiteStore) DeleteBookmark(ctx context.Context, userID, bookmarkID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM user_bookmarks WHERE id = ? AND user_id = ?", bookmarkID, userID)
	if err != nil {
		return fmt.Errorf("delete bookmark %s: %w", bookmarkID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bookmark %s: %w", bookmarkID, ErrNotFound)
	}
	return nil
}

// CheckBookmarked reports whether a user bookmarked a demand. Returns
// (nil, nil) when they have not.
func (s *SQLiteStore) CheckBookmarked(ctx context.Context, userID, demandID string) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b,
		"SELECT * FROM user_bookmarks WHERE user_id = ? AND demand_id = ?", userID, demandID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check bookmark: %w", err)
	}
	b.decode()
	return &b, nil
}

func (b *Bookmark) decode() {
	json.Unmarshal([]byte(b.CustomTagsJSON), &b.CustomTags)
}
