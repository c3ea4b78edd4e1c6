package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
	"go.uber.org/zap"
)

// GitHub collects issues from configured repositories.
type GitHub struct {
	client *http.Client
	logger *zap.Logger
	token  string
	repos  []string
}

// NewGitHub creates a new GitHub issues collector.
func NewGitHub(token string, repos []string, logger *zap.Logger) *GitHub {
	return &GitHub{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		token:  token,
		repos:  repos,
	}
}

func (g *GitHub) Name() store.Platform { return store.PlatformGitHub }

func (g *GitHub) Collect(ctx context.Context) ([]store.Demand, error) {
	var all []store.Demand
	for _, repo := range g.repos {
		demands, err := g.fetchIssues(ctx, repo)
		if err != nil {
			g.logger.Warn("issue fetch failed", zap.String("repo", repo), zap.Error(err))
			continue
		}
		all = append(all, demands...)
	}
	return all, nil
}

func (g *GitHub) fetchIssues(ctx context.Context, repo string) ([]store.Demand, error) {
	reqURL := fmt.Sprintf("https://api.github.com/repos/%s/issues?state=all&sort=created&direction=desc&per_page=50", repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create github request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s issues: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API status %d for %s", resp.StatusCode, repo)
	}

	var issues []ghIssue
	if err := json.NewDecoder(resp.Body).Decode(&issues); err != nil {
		return nil, fmt.Errorf("decode %s issues: %w", repo, err)
	}

	var demands []store.Demand
	for _, issue := range issues {
		// The issues endpoint also returns PRs.
		if issue.PullRequest != nil {
			continue
		}

		content := issue.Body
		if content == "" {
			content = issue.Title
		}

		analysis, ok := Analyze(issue.Title, content)
		if !ok {
			continue
		}

		demands = append(demands, store.Demand{
			ID:               fmt.Sprintf("github:%s:%d", repo, issue.Number),
			Content:          truncate(content, 5000),
			Title:            issue.Title,
			Platform:         store.PlatformGitHub,
			SourceURL:        issue.HTMLURL,
			Author:           issue.User.Login,
			AuthorURL:        issue.User.HTMLURL,
			Timestamp:        issue.CreatedAt.UTC(),
			CollectedAt:      time.Now().UTC(),
			Upvotes:          issue.Reactions.TotalCount,
			Comments:         issue.Comments,
			Sentiment:        analysis.Sentiment,
			SentimentScore:   analysis.SentimentScore,
			Tags:             analysis.Tags,
			ProductMentioned: analysis.Products,
			Category:         analysis.Category,
			Language:         "en",
			Repository:       repo,
			IssueNumber:      issue.Number,
		})
	}

	return demands, nil
}

type ghIssue struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	Comments    int       `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
	User        ghUser    `json:"user"`
	Reactions   ghReacts  `json:"reactions"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type ghUser struct {
	Login   string `json:"login"`
	HTMLURL string `json:"html_url"`
}

type ghReacts struct {
	TotalCount int `json:"total_count"`
}
