package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Platform identifies which social platform a demand came from.
type Platform string

const (
	PlatformReddit  Platform = "reddit"
	PlatformGitHub  Platform = "github"
	PlatformTwitter Platform = "twitter"
)

// AllPlatforms returns all known platforms.
func AllPlatforms() []Platform {
	return []Platform{PlatformReddit, PlatformGitHub, PlatformTwitter}
}

// Sentiment labels for analyzed content.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Category labels for analyzed content.
const (
	CategoryFeatureRequest = "feature-request"
	CategoryBugReport      = "bug-report"
	CategoryComplaint      = "complaint"
	CategoryPraise         = "praise"
	CategoryDiscussion     = "discussion"
)

// Sentinel errors returned by store operations.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Demand is one collected post with its analysis fields.
type Demand struct {
	ID               string    `json:"id" db:"id"`
	Content          string    `json:"content" db:"content"`
	Title            string    `json:"title,omitempty" db:"title"`
	Platform         Platform  `json:"platform" db:"platform"`
	SourceURL        string    `json:"source_url" db:"source_url"`
	Author           string    `json:"author,omitempty" db:"author"`
	AuthorURL        string    `json:"author_url,omitempty" db:"author_url"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
	CollectedAt      time.Time `json:"collected_at" db:"collected_at"`
	Upvotes          int       `json:"upvotes" db:"upvotes"`
	Comments         int       `json:"comments" db:"comments"`
	Shares           int       `json:"shares" db:"shares"`
	InteractionScore int       `json:"interaction_score" db:"interaction_score"`
	Sentiment        string    `json:"sentiment" db:"sentiment"`
	SentimentScore   float64   `json:"sentiment_score" db:"sentiment_score"`
	Tags             []string  `json:"tags" db:"-"`
	ProductMentioned []string  `json:"product_mentioned" db:"-"`
	Category         string    `json:"category,omitempty" db:"category"`
	Language         string    `json:"language" db:"language"`
	Subreddit        string    `json:"subreddit,omitempty" db:"subreddit"`
	Repository       string    `json:"repository,omitempty" db:"repository"`
	IssueNumber      int       `json:"issue_number,omitempty" db:"issue_number"`
	IsProcessed      bool      `json:"is_processed" db:"is_processed"`
	IsDeleted        bool      `json:"-" db:"is_deleted"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`

	TagsJSON     string `json:"-" db:"tags"`
	ProductsJSON string `json:"-" db:"product_mentioned"`
}

// ComputeInteractionScore derives the weighted popularity score from the raw
// counters. The stored column is always set from this, never independently.
func (d *Demand) ComputeInteractionScore() int {
	return d.Upvotes + d.Comments*2 + d.Shares*3
}

func (d *Demand) decodeArrays() {
	json.Unmarshal([]byte(d.TagsJSON), &d.Tags)
	json.Unmarshal([]byte(d.ProductsJSON), &d.ProductMentioned)
}

// Store is the persistence interface.
type Store interface {
	UpsertDemand(ctx context.Context, d *Demand) error
	UpsertDemands(ctx context.Context, demands []Demand) (int, error)
	GetDemand(ctx context.Context, id string) (*Demand, error)
	MarkProcessed(ctx context.Context, id string) error
	SoftDeleteDemand(ctx context.Context, id string) error

	SearchDemands(ctx context.Context, req SearchRequest) (*SearchResult, error)
	ExportDemands(ctx context.Context, query string, filters SearchFilters, limit int) ([]Demand, error)

	PlatformDistribution(ctx context.Context) (map[Platform]int, error)
	SentimentDistribution(ctx context.Context) (map[string]int, error)
	CategoryDistribution(ctx context.Context) (map[string]int, error)
	TrendSeries(ctx context.Context, days int) (*TrendSeries, error)
	PlatformComparison(ctx context.Context, days int) ([]PlatformComparison, error)
	TopProducts(ctx context.Context, limit int) ([]TermStat, error)
	TopTags(ctx context.Context, limit int) ([]TermStat, error)
	Overview(ctx context.Context) (*OverviewStats, error)

	CreateBookmark(ctx context.Context, b *Bookmark) error
	ListBookmarks(ctx context.Context, userID string) ([]Bookmark, error)
	GetBookmark(ctx context.Context, userID, bookmarkID string) (*Bookmark, error)
	UpdateBookmark(ctx context.Context, userID, bookmarkID string, upd BookmarkUpdate) (*Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, bookmarkID string) error
	CheckBookmarked(ctx context.Context, userID, demandID string) (*Bookmark, error)

	RecordSearch(ctx context.Context, entry SearchHistoryEntry) error
	SuggestQueries(ctx context.Context, partial string, limit int) ([]string, error)

	RebuildDailyTrends(ctx context.Context, since time.Time) error
	ListTrendingTopics(ctx context.Context, period string, limit int) ([]TrendingTopic, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertDemand inserts a demand or, when a row with the same source_url
// exists, refreshes its interaction counters and collection timestamp.
// Analysis fields and flags survive re-collection untouched.
func (s *SQLiteStore) UpsertDemand(ctx context.Context, d *Demand) error {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CollectedAt.IsZero() {
		d.CollectedAt = now
	}
	if d.Language == "" {
		d.Language = "en"
	}
	if d.Sentiment == "" {
		d.Sentiment = SentimentNeutral
	}
	d.InteractionScore = d.ComputeInteractionScore()

	tagsJSON, _ := json.Marshal(emptyIfNil(d.Tags))
	productsJSON, _ := json.Marshal(emptyIfNil(d.ProductMentioned))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO demands (
			id, content, title, platform, source_url, author, author_url,
			timestamp, collected_at, upvotes, comments, shares, interaction_score,
			sentiment, sentiment_score, tags, product_mentioned, category, language,
			subreddit, repository, issue_number, is_processed, is_deleted,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			upvotes = excluded.upvotes,
			comments = excluded.comments,
			shares = excluded.shares,
			interaction_score = excluded.interaction_score,
			collected_at = excluded.collected_at,
			updated_at = excluded.updated_at
	`, d.ID, d.Content, d.Title, d.Platform, d.SourceURL, d.Author, d.AuthorURL,
		d.Timestamp, d.CollectedAt, d.Upvotes, d.Comments, d.Shares, d.InteractionScore,
		d.Sentiment, d.SentimentScore, string(tagsJSON), string(productsJSON), d.Category, d.Language,
		d.Subreddit, d.Repository, d.IssueNumber, d.IsProcessed, d.IsDeleted,
		now, now)
	if err != nil {
		return fmt.Errorf("upsert demand %s: %w", d.SourceURL, err)
	}
	return nil
}

// UpsertDemands upserts a batch and returns how many rows were written.
func (s *SQLiteStore) UpsertDemands(ctx context.Context, demands []Demand) (int, error) {
	saved := 0
	for i := range demands {
		if err := s.UpsertDemand(ctx, &demands[i]); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func (s *SQLiteStore) GetDemand(ctx context.Context, id string) (*Demand, error) {
	var d Demand
	err := s.db.GetContext(ctx, &d, "SELECT * FROM demands WHERE id = ? AND is_deleted = 0", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("demand %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get demand %s: %w", id, err)
	}
	d.decodeArrays()
	return &d, nil
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, id string) error {
	return s.flagDemand(ctx, id, "is_processed")
}

// SoftDeleteDemand hides a demand from every search and aggregation view.
// Rows are never hard-deleted.
func (s *SQLiteStore) SoftDeleteDemand(ctx context.Context, id string) error {
	return s.flagDemand(ctx, id, "is_deleted")
}

func (s *SQLiteStore) flagDemand(ctx context.Context, id, column string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE demands SET "+column+" = 1, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set %s on demand %s: %w", column, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("demand %s: %w", id, ErrNotFound)
	}
	return nil
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
