package source

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/elonfeng/demandscope/internal/store"
)

// Source is the interface every platform collector must implement. Collect
// returns fully analyzed demand rows ready for upsert.
type Source interface {
	Name() store.Platform
	Collect(ctx context.Context) ([]store.Demand, error)
}

// truncate shortens s to max runes, never splitting a multibyte character.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

// stripHTML removes markup from feed descriptions. Good enough for the
// plain-ish fragments Nitter emits.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
