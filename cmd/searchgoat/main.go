package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/searchgoat-io/searchgoat-go/cmd/searchgoat/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "searchgoat",
	Short: "Cribl Search CLI",
	Long: `A command-line interface for running Cribl Search queries.

Submit search jobs, poll their status, and retrieve results as a terminal
table or as Parquet/CSV files. Credentials are read from CRIBL_* environment
variables or a dotenv file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file with CRIBL_* credentials (default is .env)")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "verbose HTTP logging")

	// Bind flags to viper
	_ = viper.BindPFlag("env-file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewSubmitCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewWaitCommand())
	rootCmd.AddCommand(commands.NewCancelCommand())
	rootCmd.AddCommand(commands.NewResultsCommand())
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
