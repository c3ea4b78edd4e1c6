package source

import (
	"strings"

	"github.com/elonfeng/demandscope/internal/store"
)

// Keyword lists for categorization. Checked in order; the first matching
// bucket wins, posts matching none are not demands and get dropped.
var (
	featureRequestKeywords = []string{
		"i wish", "would be great", "would be nice", "feature request",
		"please add", "need a way", "is there a way", "why can't",
		"should have", "missing feature", "it would help", "any way to",
	}
	complaintKeywords = []string{
		"frustrating", "annoying", "terrible", "awful", "hate",
		"so slow", "too expensive", "waste of", "disappointed", "useless",
	}
	bugReportKeywords = []string{
		"bug", "crash", "error", "doesn't work", "not working",
		"broken", "glitch", "fails to", "stopped working",
	}
	praiseKeywords = []string{
		"love", "great", "amazing", "awesome", "perfect", "best", "thanks",
	}
	discussionKeywords = []string{
		"how", "what", "why", "anyone", "experience", "opinion", "thoughts",
	}
)

var positiveWords = []string{
	"love", "great", "good", "amazing", "awesome", "excellent", "perfect",
	"best", "fantastic", "helpful", "happy", "impressed", "works well",
	"recommend", "smooth", "solid", "thanks",
}

var negativeWords = []string{
	"hate", "bad", "terrible", "awful", "worst", "broken", "annoying",
	"frustrating", "slow", "useless", "disappointed", "crash", "bug",
	"expensive", "waste", "fails", "painful",
}

// productLexicon lists product names worth tracking as mentions.
var productLexicon = []string{
	"notion", "slack", "figma", "jira", "trello", "asana", "linear",
	"obsidian", "evernote", "airtable", "zapier", "discord", "zoom",
	"chatgpt", "claude", "copilot", "vscode", "intellij", "postman",
	"stripe", "shopify", "salesforce", "hubspot", "zendesk", "intercom",
	"dropbox", "onedrive", "google drive", "excel", "sheets",
	"photoshop", "canva", "webflow", "wordpress", "squarespace",
}

// topicTags maps a tag to the phrases that imply it.
var topicTags = map[string][]string{
	"api":         {"api", "webhook", "endpoint"},
	"mobile":      {"mobile", "ios", "android", "app store"},
	"pricing":     {"pricing", "price", "expensive", "subscription", "free tier"},
	"performance": {"slow", "performance", "lag", "speed", "memory"},
	"ui":          {"ui", "ux", "interface", "design", "dark mode"},
	"integration": {"integration", "integrate", "connect with", "plugin"},
	"sync":        {"sync", "offline", "backup"},
	"search":      {"search", "filter", "find"},
	"export":      {"export", "import", "csv", "migration"},
	"security":    {"security", "privacy", "2fa", "encryption", "sso"},
}

// Analysis is the derived metadata attached to a collected post.
type Analysis struct {
	Category       string
	Sentiment      string
	SentimentScore float64
	Products       []string
	Tags           []string
}

// Analyze categorizes a post and derives sentiment, product mentions and
// tags. Returns false when the post matches no demand category.
func Analyze(title, content string) (Analysis, bool) {
	text := strings.ToLower(title + " " + content)

	category := categorize(text)
	if category == "" {
		return Analysis{}, false
	}

	sentiment, score := scoreSentiment(text)

	return Analysis{
		Category:       category,
		Sentiment:      sentiment,
		SentimentScore: score,
		Products:       extractProducts(text),
		Tags:           extractTags(text, category),
	}, true
}

func categorize(text string) string {
	if containsAny(text, featureRequestKeywords) {
		return store.CategoryFeatureRequest
	}
	if containsAny(text, complaintKeywords) {
		return store.CategoryComplaint
	}
	if containsAny(text, bugReportKeywords) {
		return store.CategoryBugReport
	}
	if containsAny(text, praiseKeywords) {
		return store.CategoryPraise
	}
	if containsAny(text, discussionKeywords) {
		return store.CategoryDiscussion
	}
	return ""
}

// scoreSentiment counts lexicon hits and maps the balance into [0,1], with
// 0.5 as the neutral midpoint.
func scoreSentiment(text string) (string, float64) {
	pos := countHits(text, positiveWords)
	neg := countHits(text, negativeWords)

	if pos+neg == 0 {
		return store.SentimentNeutral, 0.5
	}

	score := 0.5 + 0.5*float64(pos-neg)/float64(pos+neg)
	switch {
	case score >= 0.6:
		return store.SentimentPositive, score
	case score <= 0.4:
		return store.SentimentNegative, score
	}
	return store.SentimentNeutral, score
}

func extractProducts(text string) []string {
	var products []string
	for _, p := range productLexicon {
		if strings.Contains(text, p) {
			products = append(products, p)
		}
	}
	return products
}

func extractTags(text, category string) []string {
	tags := []string{category}
	for tag, phrases := range topicTags {
		if containsAny(text, phrases) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
