package cmd

import (
	"strings"

	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/output"
	"github.com/spf13/cobra"
)

var (
	searchPage         int
	searchRecord       bool
	searchOutputFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search TMDB for movies",
	Long: `Search TMDB for movies matching the query, or list popular movies when no
query is given.

With --record the search is counted in the analytics table against the top
result, the way the app does after a user search returns results.

Examples:
  reeltrend search batman
  reeltrend search "spirited away" --record
  reeltrend search --page 2 --output table`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output.SetFormat(searchOutputFormat)

		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		a, err := loadApp(nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		client, err := a.movies()
		if err != nil {
			return err
		}

		record := searchRecord && strings.TrimSpace(query) != ""

		var store *analytics.Store
		if record {
			if store, err = a.analytics(); err != nil {
				return err
			}
		}

		spin := output.NewSpinner("Searching movies")
		spin.Start()

		page, err := client.Search(cmd.Context(), query, searchPage)
		if err != nil {
			spin.Fail("Movie search failed")

			return err
		}
		spin.Stop()

		if err := output.DisplayMovies(page, searchOutputFormat); err != nil {
			return err
		}

		if !record || len(page.Results) == 0 {
			return nil
		}

		if err := store.RecordSearch(cmd.Context(), query, page.Results[0].Analytics()); err != nil {
			return err
		}

		logger.Log.Debugf("Recorded search %q", query)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Result page")
	searchCmd.Flags().BoolVar(&searchRecord, "record", false, "Record the search against the top result")
	searchCmd.Flags().StringVarP(&searchOutputFormat, "output", "o", output.DefaultFormat(output.FormatText, output.Formats), "Output format: text, table, json")
}
