// Package main provides the command-line interface for converting
// spreadsheet exports into word-pair lines without running the server.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errInvalidInput signals exit status 1 after output has been written.
var errInvalidInput = errors.New("input has invalid rows")

func main() {
	// A .env file is optional; variables already set take precedence.
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errInvalidInput) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree with explicit streams for testing.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "csvtotext",
		Short: "Convert spreadsheet word lists into word:hint|word:hint lines",
		Long: `csvtotext turns four-column spreadsheet exports (word, hint, word, hint)
into one line per pair. Comma and semicolon separated CSV files and .xlsx
workbooks are accepted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(stderr, verbose)
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log conversion details to stderr")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	return rootCmd
}
