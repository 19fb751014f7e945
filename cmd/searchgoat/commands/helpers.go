package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
	"github.com/searchgoat-io/searchgoat-go/pkg/sgclient"
)

// maxTableRows caps terminal table output; full results belong in files.
const maxTableRows = 50

// newClient builds a client from the environment and the --env-file flag.
// When only the client secret is missing and stdin is a terminal, it prompts
// for it instead of failing.
func newClient() (searchgoat.Client, error) {
	envFile := viper.GetString("env-file")

	client, err := sgclient.NewFromEnvFile(envFile)
	if err == nil {
		return client, nil
	}

	configErr := &searchgoat.ConfigurationError{}
	if errors.As(err, &configErr) && onlySecretMissing(configErr) && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprint(os.Stderr, "Client secret: ")

		secret, readErr := term.ReadPassword(int(syscall.Stdin))

		fmt.Fprintln(os.Stderr)

		if readErr != nil {
			return nil, fmt.Errorf("reading client secret: %w", readErr)
		}

		_ = os.Setenv("CRIBL_CLIENT_SECRET", string(secret))

		return sgclient.NewFromEnvFile(envFile)
	}

	return nil, err
}

// onlySecretMissing reports whether the secret is the sole missing field.
func onlySecretMissing(err *searchgoat.ConfigurationError) bool {
	return len(err.Missing) == 1 && err.Missing[0] == "CRIBL_CLIENT_SECRET"
}

// renderResults writes a result set to stdout in the configured format.
func renderResults(results *searchgoat.ResultSet) error {
	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(results.Records())
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(results.Records())
	default:
		return renderResultsTable(results)
	}
}

// renderResultsTable prints up to maxTableRows rows as a terminal table.
func renderResultsTable(results *searchgoat.ResultSet) error {
	columns := results.Columns()

	header := make([]any, len(columns))
	for i, name := range columns {
		header[i] = name
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header...)

	rows := results.Records()

	truncated := false
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
		truncated = true
	}

	for _, record := range rows {
		cells := make([]any, len(columns))

		for i, name := range columns {
			value, ok := record[name]
			if !ok || value == nil {
				cells[i] = ""

				continue
			}

			cells[i] = fmt.Sprintf("%v", value)
		}

		_ = table.Append(cells...)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if truncated {
		fmt.Printf("Showing %d of %d rows; use --save to export all of them\n", maxTableRows, results.Len())
	}

	return nil
}

// recordJSON renders one record as a compact JSON line.
func recordJSON(record searchgoat.Record) (string, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	return string(encoded), nil
}

// renderJob writes a job snapshot to stdout in the configured format.
func renderJob(job *searchgoat.Job) error {
	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(job)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(job)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("ID", job.ID)
		_ = table.Append("State", string(job.State))

		if job.Query != "" {
			_ = table.Append("Query", job.Query)
			_ = table.Append("Earliest", job.Earliest)
			_ = table.Append("Latest", job.Latest)
		}

		if job.State == searchgoat.JobStateCompleted {
			_ = table.Append("Records", fmt.Sprintf("%d", job.RecordCount))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}
