package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/tmdb"
)

// DisplayMovies renders one page of movie results.
func DisplayMovies(page *tmdb.Page, format string) error {
	if page == nil {
		page = &tmdb.Page{}
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return displayJSON(page)
	case FormatTable:
		return displayMoviesTable(page)
	default:
		return displayMoviesText(page)
	}
}

func displayMoviesText(page *tmdb.Page) error {
	w := writer()

	if len(page.Results) == 0 {
		_, err := fmt.Fprintln(w, "No movies found")

		return err
	}

	colorize := colorEnabled()
	titleWidth := max(titleMin, terminalWidth()-30)

	for _, m := range page.Results {
		title := truncate(m.Title, titleWidth)
		if colorize {
			title = text.Bold.Sprint(title)
		}

		year := m.Year()
		if year == "" {
			year = "----"
		}

		fmt.Fprintf(w, "%8d  %s  %s  %.1f★\n", m.ID, year, title, m.VoteAverage)
	}

	if page.TotalPages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (%d results)\n", page.Page, page.TotalPages, page.TotalResults)
	}

	return nil
}

func displayMoviesTable(page *tmdb.Page) error {
	t := table.NewWriter()
	t.SetOutputMirror(writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Released", "Rating", "Poster"})

	for _, m := range page.Results {
		t.AppendRow(table.Row{
			m.ID,
			truncate(m.Title, 40),
			valueOr(m.ReleaseDate),
			fmt.Sprintf("%.1f", m.VoteAverage),
			valueOr(analytics.PosterURL(m.PosterPath)),
		})
	}

	if page.TotalPages > 1 {
		t.AppendFooter(table.Row{"", fmt.Sprintf("page %d/%d", page.Page, page.TotalPages), "", "", fmt.Sprintf("%d results", page.TotalResults)})
	}

	t.Render()

	return nil
}
