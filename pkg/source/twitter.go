package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Twitter collects tweets via Nitter RSS feeds.
type Twitter struct {
	client    *http.Client
	parser    *gofeed.Parser
	logger    *zap.Logger
	nitterURL string
	accounts  []string
}

// NewTwitter creates a new Twitter/X collector using Nitter RSS.
func NewTwitter(nitterURL string, accounts []string, logger *zap.Logger) *Twitter {
	if nitterURL == "" {
		nitterURL = "https://nitter.net"
	}
	return &Twitter{
		client:    &http.Client{Timeout: 30 * time.Second},
		parser:    gofeed.NewParser(),
		logger:    logger,
		nitterURL: strings.TrimRight(nitterURL, "/"),
		accounts:  accounts,
	}
}

func (t *Twitter) Name() store.Platform { return store.PlatformTwitter }

func (t *Twitter) Collect(ctx context.Context) ([]store.Demand, error) {
	var all []store.Demand
	for _, account := range t.accounts {
		demands, err := t.collectAccount(ctx, account)
		if err != nil {
			t.logger.Warn("account fetch failed", zap.String("account", account), zap.Error(err))
			continue
		}
		all = append(all, demands...)
	}
	return all, nil
}

func (t *Twitter) collectAccount(ctx context.Context, account string) ([]store.Demand, error) {
	feedURL := fmt.Sprintf("%s/%s/rss", t.nitterURL, account)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create twitter request @%s: %w", account, err)
	}
	req.Header.Set("User-Agent", "demandscope/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch twitter @%s: %w", account, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter @%s status %d", account, resp.StatusCode)
	}

	feed, err := t.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse twitter @%s: %w", account, err)
	}

	var demands []store.Demand
	for _, entry := range feed.Items {
		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		}

		content := stripHTML(entry.Description)
		if content == "" {
			content = entry.Title
		}

		analysis, ok := Analyze(entry.Title, content)
		if !ok {
			continue
		}

		// Convert nitter link back to twitter.
		link := strings.Replace(entry.Link, t.nitterURL, "https://x.com", 1)

		demands = append(demands, store.Demand{
			ID:               fmt.Sprintf("twitter:%s:%s", account, entry.GUID),
			Content:          truncate(content, 600),
			Platform:         store.PlatformTwitter,
			SourceURL:        link,
			Author:           account,
			AuthorURL:        "https://x.com/" + account,
			Timestamp:        published,
			CollectedAt:      time.Now().UTC(),
			Sentiment:        analysis.Sentiment,
			SentimentScore:   analysis.SentimentScore,
			Tags:             analysis.Tags,
			ProductMentioned: analysis.Products,
			Category:         analysis.Category,
			Language:         "en",
		})
	}

	return demands, nil
}
