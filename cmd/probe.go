package cmd

import (
	"errors"

	"github.com/kedare/reeltrend/internal/output"
	"github.com/spf13/cobra"
)

var (
	probeOutputFormat string
	errProbeFailed    = errors.New("connectivity probe failed")
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the analytics table is reachable",
	Long: `Read up to five rows from the analytics table and report the total row count
with a preview of the stored search terms.

Examples:
  # Probe the configured Appwrite table
  reeltrend probe

  # Probe a local SQLite table and print JSON
  reeltrend probe --backend sqlite --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output.SetFormat(probeOutputFormat)

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		report, probeErr := a.probe.Check(cmd.Context())
		if err := output.DisplayProbe(report, probeErr, probeOutputFormat); err != nil {
			return err
		}

		if probeErr != nil {
			return errProbeFailed
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeOutputFormat, "output", "o", output.DefaultFormat(output.FormatText, output.Formats), "Output format: text, json")
}
