package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const pdfDetailRows = 50

// WritePDF renders the report as a formatted PDF: criteria, summary
// breakdowns, and the first rows of the result set.
func (r *Report) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Demandscope Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated: "+r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeSectionTitle(pdf, "Search Criteria")
	writeKV(pdf, "Query", orDash(r.Criteria.Query))
	writeKV(pdf, "Platforms", joinOrDash(platformStrings(r.Criteria.Filters.Platforms)))
	writeKV(pdf, "Sentiments", joinOrDash(r.Criteria.Filters.Sentiments))
	writeKV(pdf, "Categories", joinOrDash(r.Criteria.Filters.Categories))
	writeKV(pdf, "Time range", orDash(string(r.Criteria.Filters.TimeRange)))
	writeKV(pdf, "Min upvotes", fmt.Sprintf("%d", r.Criteria.Filters.MinUpvotes))
	writeKV(pdf, "Min interaction score", fmt.Sprintf("%d", r.Criteria.Filters.MinInteractionScore))
	pdf.Ln(4)

	writeSectionTitle(pdf, "Summary")
	writeKV(pdf, "Total demands", fmt.Sprintf("%d", r.Summary.TotalDemands))
	writeBreakdown(pdf, "By platform", r.Summary.PlatformBreakdown)
	writeBreakdown(pdf, "By sentiment", r.Summary.SentimentBreakdown)
	writeBreakdown(pdf, "By category", r.Summary.CategoryBreakdown)
	pdf.Ln(4)

	writeSectionTitle(pdf, fmt.Sprintf("Demands (first %d)", pdfDetailRows))
	pdf.SetFont("Helvetica", "B", 8)
	widths := []float64{18, 28, 22, 14, 18, 90}
	headers := []string{"Platform", "Author", "Date", "Score", "Sentiment", "Content"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for i := range r.Data {
		if i >= pdfDetailRows {
			break
		}
		d := &r.Data[i]
		cells := []string{
			string(d.Platform),
			clip(d.Author, 20),
			d.Timestamp.Format("2006-01-02"),
			fmt.Sprintf("%d", d.InteractionScore),
			d.Sentiment,
			clip(flatten(d.Content), 70),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func writeSectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func writeKV(pdf *fpdf.Fpdf, key, value string) {
	pdf.CellFormat(60, 6, key, "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "1", 1, "L", false, 0, "")
}

func writeBreakdown(pdf *fpdf.Fpdf, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeKV(pdf, "  "+k, fmt.Sprintf("%d", counts[k]))
	}
}

func platformStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(ss, ", ")
}

// clip shortens s to max runes, never splitting a multibyte character.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
