package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kedare/reeltrend/internal/analytics"
)

const (
	displayNone = "-"
	titleMin    = 20
)

// TrendingResult is the JSON shape of a trending read.
type TrendingResult struct {
	Available bool                     `json:"available"`
	Searches  []analytics.SearchRecord `json:"searches"`
}

// DisplayTrending renders the trending list.
//
// Supported formats:
//   - "json": {"available": bool, "searches": [...]}
//   - "table": rank, term, count, movie and poster columns
//   - "text" (default): one ranked line per term
func DisplayTrending(records []analytics.SearchRecord, available bool, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		if records == nil {
			records = []analytics.SearchRecord{}
		}

		return displayJSON(TrendingResult{Available: available, Searches: records})
	case FormatTable:
		if !available {
			return displayUnavailable()
		}

		return displayTrendingTable(records)
	default:
		if !available {
			return displayUnavailable()
		}

		return displayTrendingText(records)
	}
}

func displayUnavailable() error {
	_, err := fmt.Fprintln(writer(), "Trending searches are unavailable right now")

	return err
}

func displayTrendingText(records []analytics.SearchRecord) error {
	w := writer()

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No searches recorded yet")

		return err
	}

	colorize := colorEnabled()
	termWidth := 0
	for _, r := range records {
		termWidth = max(termWidth, visibleWidth(r.SearchTerm))
	}
	termWidth = min(termWidth, 30)

	titleWidth := max(titleMin, terminalWidth()-termWidth-20)

	for i, r := range records {
		count := fmt.Sprintf("%d×", r.Count)
		if colorize {
			count = text.FgGreen.Sprint(count)
		}

		title := r.Title
		if title == "" {
			title = displayNone
		}

		fmt.Fprintf(w, "%2d. %s %s  %s\n", i+1, padRight(truncate(r.SearchTerm, termWidth), termWidth), padRight(count, 6), truncate(title, titleWidth))
	}

	return nil
}

func displayTrendingTable(records []analytics.SearchRecord) error {
	t := table.NewWriter()
	t.SetOutputMirror(writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Search Term", "Count", "Movie", "Title", "Poster"})

	for i, r := range records {
		poster := r.PosterURL
		if poster == "" {
			poster = displayNone
		}

		t.AppendRow(table.Row{i + 1, r.SearchTerm, r.Count, valueOr(r.MovieID), truncate(valueOr(r.Title), 40), poster})
	}

	t.Render()

	return nil
}

func valueOr(s string) string {
	if s == "" {
		return displayNone
	}

	return s
}
