package cmd

import (
	"fmt"

	"github.com/kedare/reeltrend/internal/output"
	"github.com/spf13/cobra"
)

var (
	trendingLimit        int
	trendingOutputFormat string
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show the most searched terms",
	Long: `List the most searched terms ordered by search count, highest first.

When the analytics table cannot be read the list is reported as unavailable
instead of failing.

Examples:
  reeltrend trending
  reeltrend trending --limit 10 --output table
  reeltrend trending --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output.SetFormat(trendingOutputFormat)

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		spin := output.NewSpinner("Fetching trending searches")
		spin.Start()

		records, ok := a.store.TopSearches(cmd.Context(), trendingLimit)
		if ok {
			spin.Success(fmt.Sprintf("Fetched %d trending searches", len(records)))
		} else {
			spin.Fail("Trending searches unavailable")
		}

		return output.DisplayTrending(records, ok, trendingOutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(trendingCmd)

	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", 0, "Number of terms to show (0 = configured default)")
	trendingCmd.Flags().StringVarP(&trendingOutputFormat, "output", "o", output.DefaultFormat(output.FormatText, output.Formats), "Output format: text, table, json")
}
