package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elonfeng/demandscope/internal/store"
)

// WriteCSV streams demand rows as CSV. Content newlines are flattened so the
// file opens cleanly in spreadsheet tools.
func WriteCSV(w io.Writer, demands []store.Demand) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id", "platform", "author", "timestamp", "upvotes",
		"comments", "shares", "interaction_score", "sentiment",
		"category", "tags", "content",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range demands {
		d := &demands[i]
		row := []string{
			d.ID,
			string(d.Platform),
			d.Author,
			d.Timestamp.Format(time.RFC3339),
			strconv.Itoa(d.Upvotes),
			strconv.Itoa(d.Comments),
			strconv.Itoa(d.Shares),
			strconv.Itoa(d.InteractionScore),
			d.Sentiment,
			d.Category,
			strings.Join(d.Tags, ", "),
			flatten(d.Content),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", d.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteBookmarksCSV streams a user's bookmarks joined with their demands.
func WriteBookmarksCSV(w io.Writer, bookmarks []store.Bookmark) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id", "demand_id", "platform", "author", "timestamp",
		"upvotes", "comments", "shares", "sentiment", "category",
		"tags", "custom_notes", "custom_tags", "custom_category", "content",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range bookmarks {
		b := &bookmarks[i]
		if b.Demand == nil {
			continue
		}
		d := b.Demand
		row := []string{
			b.ID,
			b.DemandID,
			string(d.Platform),
			d.Author,
			d.Timestamp.Format(time.RFC3339),
			strconv.Itoa(d.Upvotes),
			strconv.Itoa(d.Comments),
			strconv.Itoa(d.Shares),
			d.Sentiment,
			d.Category,
			strings.Join(d.Tags, ", "),
			b.CustomNotes,
			strings.Join(b.CustomTags, ", "),
			b.CustomCategory,
			flatten(d.Content),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", b.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func flatten(s string) string {
	r := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	return r.Replace(s)
}
