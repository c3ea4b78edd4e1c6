package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
	"go.uber.org/zap"
)

// Reddit collects demand posts from configured subreddits.
type Reddit struct {
	client       *http.Client
	logger       *zap.Logger
	clientID     string
	clientSecret string
	subreddits   []string
	mu           sync.Mutex
	token        string
	tokenExpiry  time.Time
}

// NewReddit creates a new Reddit collector.
func NewReddit(clientID, clientSecret string, subreddits []string, logger *zap.Logger) *Reddit {
	if len(subreddits) == 0 {
		subreddits = []string{"SaaS", "startups", "webdev"}
	}
	return &Reddit{
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
		clientID:     clientID,
		clientSecret: clientSecret,
		subreddits:   subreddits,
	}
}

func (r *Reddit) Name() store.Platform { return store.PlatformReddit }

func (r *Reddit) Collect(ctx context.Context) ([]store.Demand, error) {
	if err := r.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}

	var all []store.Demand
	for _, sub := range r.subreddits {
		demands, err := r.fetchSubreddit(ctx, sub)
		if err != nil {
			r.logger.Warn("subreddit fetch failed", zap.String("subreddit", sub), zap.Error(err))
			continue
		}
		all = append(all, demands...)
	}
	return all, nil
}

func (r *Reddit) authenticate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	data := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://www.reddit.com/api/v1/access_token",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}

	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "demandscope/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("reddit token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit auth status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode reddit token: %w", err)
	}

	r.token = tokenResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return nil
}

func (r *Reddit) fetchSubreddit(ctx context.Context, subreddit string) ([]store.Demand, error) {
	reqURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/new.json?limit=50", subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("User-Agent", "demandscope/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit r/%s status %d", subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", subreddit, err)
	}

	var demands []store.Demand
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}

		content := post.Selftext
		if content == "" {
			content = post.Title
		}

		analysis, ok := Analyze(post.Title, content)
		if !ok {
			continue
		}

		author := post.Author
		authorURL := ""
		if author != "" {
			authorURL = "https://reddit.com/user/" + author
		}

		demands = append(demands, store.Demand{
			ID:               fmt.Sprintf("reddit:%s", post.ID),
			Content:          content,
			Title:            post.Title,
			Platform:         store.PlatformReddit,
			SourceURL:        "https://reddit.com" + post.Permalink,
			Author:           author,
			AuthorURL:        authorURL,
			Timestamp:        time.Unix(int64(post.CreatedUTC), 0).UTC(),
			CollectedAt:      time.Now().UTC(),
			Upvotes:          post.Score,
			Comments:         post.NumComments,
			Sentiment:        analysis.Sentiment,
			SentimentScore:   analysis.SentimentScore,
			Tags:             append(analysis.Tags, subreddit),
			ProductMentioned: analysis.Products,
			Category:         analysis.Category,
			Language:         "en",
			Subreddit:        subreddit,
		})
	}

	return demands, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}
