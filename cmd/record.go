package cmd

import (
	"errors"
	"fmt"

	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/output"
	"github.com/kedare/reeltrend/internal/tmdb"
	"github.com/spf13/cobra"
)

var (
	recordMovieID    int64
	recordTitle      string
	recordPosterPath string
)

var recordCmd = &cobra.Command{
	Use:   "record <query>",
	Short: "Record one search",
	Long: `Count one search of <query>. The first row with the same search term has its
count incremented; otherwise a new row is created for the given movie.

Without --movie-id the movie is looked up on TMDB and the top result is used.
The query is stored exactly as given.

Examples:
  reeltrend record batman --movie-id 268 --title Batman --poster-path /cij4dd21v2Rk2YtUQbV5kW69WB2.jpg
  reeltrend record "the dark knight"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		movie := analytics.Movie{ID: recordMovieID, Title: recordTitle, PosterPath: recordPosterPath}
		lookup := movie.ID == 0

		var client *tmdb.Client
		if lookup {
			client, err = a.movies()
			if err != nil {
				return errors.Join(errors.New("--movie-id is required without TMDB"), err)
			}
		}

		message := "Recording search"
		if lookup {
			message = fmt.Sprintf("Looking up %q on TMDB", query)
		}

		spin := output.NewSpinner(message)
		spin.Start()

		if lookup {
			found, err := firstMovie(cmd.Context(), client, query)
			if err != nil {
				spin.Fail("TMDB lookup failed")

				return err
			}

			movie = found.Analytics()
			logger.Log.Debugf("Using TMDB result %d (%s)", movie.ID, movie.Title)
			spin.Update(fmt.Sprintf("Recording search against %s", movie.Title))
		}

		if err := a.store.RecordSearch(cmd.Context(), query, movie); err != nil {
			spin.Fail("Failed to record search")

			return err
		}
		spin.Stop()

		logger.Log.Successf("Recorded search %q (%s)", query, movie.Title)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().Int64Var(&recordMovieID, "movie-id", 0, "TMDB movie id the search led to")
	recordCmd.Flags().StringVar(&recordTitle, "title", "", "Movie title")
	recordCmd.Flags().StringVar(&recordPosterPath, "poster-path", "", "TMDB poster path, e.g. /abc.jpg")
	recordCmd.MarkFlagsRequiredTogether("movie-id", "title")
}
