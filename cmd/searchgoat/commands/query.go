package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// NewQueryCommand creates the query command
func NewQueryCommand() *cobra.Command {
	var (
		earliest     string
		latest       string
		timeout      time.Duration
		pollInterval time.Duration
		pageSize     int
		savePath     string
	)

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a search query and retrieve its results",
		Long: `Submit a search query, wait for it to complete, and retrieve all results.

Results are printed to stdout in the configured output format, or written to
a file when --save is given (format chosen by the .parquet/.csv extension).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			results, err := client.Query(cmd.Context(), args[0], &searchgoat.QueryOptions{
				Earliest:     earliest,
				Latest:       latest,
				Timeout:      timeout,
				PollInterval: pollInterval,
				PageSize:     pageSize,
			})
			if err != nil {
				return err
			}

			if savePath != "" {
				err = results.Save(savePath)
				if err != nil {
					return err
				}

				fmt.Printf("Saved %d records to %s\n", results.Len(), savePath)

				return nil
			}

			return renderResults(results)
		},
	}

	cmd.Flags().StringVar(&earliest, "earliest", "", "start of time range (default -1h)")
	cmd.Flags().StringVar(&latest, "latest", "", "end of time range (default now)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum time to wait for completion (default 5m)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "interval between status checks (default 2s)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "records per results page (default 1000)")
	cmd.Flags().StringVar(&savePath, "save", "", "write results to a .parquet or .csv file")

	return cmd
}
