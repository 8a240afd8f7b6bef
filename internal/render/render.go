// Package render formats ranked results for terminals and plain streams.
package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"semsearch/internal/domain"
)

var (
	citationRe       = regexp.MustCompile(`\[\d+\]`)
	trailingDigitsRe = regexp.MustCompile(`\d+$`)
)

// CleanText removes bracketed citation markers such as [12] and a trailing
// reference number left over from scraped pages.
func CleanText(s string) string {
	s = trailingDigitsRe.ReplaceAllString(s, "")
	return citationRe.ReplaceAllString(s, "")
}

// ChunkLabel describes where a chunk sits in its source text, counting from 1.
func ChunkLabel(rec domain.MetadataRecord) string {
	return fmt.Sprintf("Chunk %d of %d from %s", rec.ChunkID+1, rec.TotalChunks, rec.URL)
}

// Printer writes result listings. Styling is applied only when the
// destination is a color-capable terminal.
type Printer struct {
	w       io.Writer
	heading lipgloss.Style
	rank    lipgloss.Style
	muted   lipgloss.Style
	rule    lipgloss.Style
	errorS  lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true),
		rank:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		rule:    r.NewStyle().Foreground(lipgloss.Color("8")),
		errorS:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Results prints the query header followed by every result, best first.
func (p *Printer) Results(query string, results []domain.RankedResult) {
	fmt.Fprintf(p.w, "\n%s\n", p.heading.Render(fmt.Sprintf("Query: '%s'", query)))
	fmt.Fprintln(p.w, p.rule.Render(strings.Repeat("=", 60)))
	if len(results) == 0 {
		fmt.Fprintln(p.w, "No results found!")
		return
	}
	for _, r := range results {
		fmt.Fprintf(p.w, "\n%s\n", p.rank.Render(fmt.Sprintf("Rank %d (Score: %.4f)", r.Rank, r.Score)))
		fmt.Fprintf(p.w, "Source: %s\n", r.Metadata.URL)
		fmt.Fprintln(p.w, p.muted.Render(ChunkLabel(r.Metadata)))
		fmt.Fprintf(p.w, "Text length: %d characters\n", r.Metadata.TextLength)
		fmt.Fprintf(p.w, "Content: %s\n", CleanText(r.Metadata.Text))
		fmt.Fprintln(p.w, p.rule.Render(strings.Repeat("-", 40)))
	}
}

// Error prints a per-query failure without ending the session.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, p.errorS.Render("Error: "+err.Error()))
}

// Line prints a plain informational line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
