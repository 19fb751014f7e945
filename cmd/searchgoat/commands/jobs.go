package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// NewSubmitCommand creates the submit command
func NewSubmitCommand() *cobra.Command {
	var (
		earliest string
		latest   string
	)

	cmd := &cobra.Command{
		Use:   "submit <query>",
		Short: "Submit a search job without waiting for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			job, err := client.Submit(cmd.Context(), args[0], &searchgoat.SubmitOptions{
				Earliest: earliest,
				Latest:   latest,
			})
			if err != nil {
				return err
			}

			return renderJob(job)
		},
	}

	cmd.Flags().StringVar(&earliest, "earliest", "", "start of time range (default -1h)")
	cmd.Flags().StringVar(&latest, "latest", "", "end of time range (default now)")

	return cmd
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the current state of a search job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			job, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderJob(job)
		},
	}
}

// NewWaitCommand creates the wait command
func NewWaitCommand() *cobra.Command {
	var (
		timeout      time.Duration
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait <job-id>",
		Short: "Wait for a search job to reach a terminal state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			job, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			err = client.Wait(cmd.Context(), job, &searchgoat.WaitOptions{
				Timeout:      timeout,
				PollInterval: pollInterval,
			})
			if err != nil {
				return err
			}

			return renderJob(job)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum time to wait (default 5m)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "interval between status checks (default 2s)")

	return cmd
}

// NewCancelCommand creates the cancel command
func NewCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Request cancellation of a running search job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			err = client.Cancel(cmd.Context(), &searchgoat.Job{ID: args[0]})
			if err != nil {
				return err
			}

			fmt.Printf("Requested cancellation of job %s\n", args[0])

			return nil
		},
	}
}

// NewResultsCommand creates the results command
func NewResultsCommand() *cobra.Command {
	var (
		savePath string
		pageSize int
		stream   bool
	)

	cmd := &cobra.Command{
		Use:   "results <job-id>",
		Short: "Retrieve the results of a completed search job",
		Long: `Retrieve all results of a completed job.

With --stream, records are printed one per line as they arrive instead of
being materialized in memory first; --save is unavailable in that mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stream && savePath != "" {
				return errors.New("--stream and --save are mutually exclusive")
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			job, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if stream {
				return streamResults(cmd, client, job, pageSize)
			}

			results, err := client.Retrieve(cmd.Context(), job)
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

	cmd.Flags().StringVar(&savePath, "save", "", "write results to a .parquet or .csv file")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "records per results page (default 1000)")
	cmd.Flags().BoolVar(&stream, "stream", false, "print records as they arrive, one JSON object per line")

	return cmd
}

// streamResults prints records one per line without materializing the set.
func streamResults(cmd *cobra.Command, client searchgoat.Client, job *searchgoat.Job, pageSize int) error {
	iterator, err := client.Stream(cmd.Context(), job, &searchgoat.StreamOptions{PageSize: pageSize})
	if err != nil {
		return err
	}
	defer iterator.Close()

	for {
		record, err := iterator.Next(cmd.Context())
		if errors.Is(err, searchgoat.ErrNoMoreItems) {
			return nil
		}

		if err != nil {
			return err
		}

		line, err := recordJSON(record)
		if err != nil {
			return err
		}

		fmt.Println(line)
	}
}
