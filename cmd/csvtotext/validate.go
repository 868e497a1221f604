package main

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/csvtotext/internal/config"
	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/spf13/cobra"
)

// validateResult is the structured output of the validate command.
type validateResult struct {
	Valid       bool              `json:"valid" yaml:"valid"`
	InvalidRows []core.InvalidRow `json:"invalid_rows" yaml:"invalid_rows"`
}

func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that edited text has the word,hint:word,hint shape",
		Long: `Validate reads text (from the file, or stdin when none is given) and lists
every line that is not "word,hint:word,hint". It exits with status 1 when
any line is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			in, closeIn, err := openInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			defer closeIn()

			decoded, err := core.DecodeText(in, cfg.Conversion.MaxFileSize)
			if err != nil && !errors.Is(err, core.ErrEmptyFile) {
				return fmt.Errorf("%s", core.FormatUserError(err))
			}

			invalid := core.ValidateText(decoded.Text)
			if invalid == nil {
				invalid = []core.InvalidRow{}
			}

			text := core.FormatReport(invalid)
			if len(invalid) > 0 && format == formatText {
				text = fmt.Sprintf("%d invalid line(s):\n%s", len(invalid), text)
			}
			result := validateResult{Valid: len(invalid) == 0, InvalidRows: invalid}
			if err := writeOutput(cmd.OutOrStdout(), "", format, result, text); err != nil {
				return err
			}

			if !result.Valid {
				return errInvalidInput
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, yaml")
	return cmd
}
