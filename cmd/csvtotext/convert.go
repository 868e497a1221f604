package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/csvtotext/internal/config"
	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/JonMunkholm/csvtotext/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type convertOptions struct {
	wordHintSep string
	pairSep     string
	sheet       string
	format      string
	output      string
	strict      bool
}

func newConvertCmd() *cobra.Command {
	opts := convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert CSV or .xlsx files to word-pair lines",
		Long: `Convert reads each file (or stdin when none are given) and prints one
line per row. Rows that could not be converted are reported on stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.wordHintSep, "word-hint-sep", "", "Separator between a word and its hint (default from CONVERT_WORD_HINT_SEPARATOR or \":\")")
	flags.StringVar(&opts.pairSep, "pair-sep", "", "Separator between the two pairs (default from CONVERT_PAIR_SEPARATOR or \"|\")")
	flags.StringVar(&opts.sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	flags.StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json, yaml")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&opts.strict, "strict", false, "Exit with status 1 when any row or file could not be converted")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts convertOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.wordHintSep != "" {
		cfg.Conversion.WordHintSeparator = opts.wordHintSep
	}
	if opts.pairSep != "" {
		cfg.Conversion.PairSeparator = opts.pairSep
	}
	if opts.sheet != "" {
		cfg.Conversion.Sheet = opts.sheet
	}
	// Every named file is converted, whatever the server limit says.
	cfg.Conversion.MaxFiles = max(cfg.Conversion.MaxFiles, len(args))

	service, err := core.NewService(cfg, nil, nil)
	if err != nil {
		return err
	}

	files, err := readSources(cmd.InOrStdin(), args, cfg.Conversion.MaxFileSize)
	if err != nil {
		return err
	}

	batch, err := service.ConvertFiles(context.Background(), files)
	if err != nil {
		return fmt.Errorf("%s", core.FormatUserError(err))
	}

	if report := batch.Report(); report != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), report)
	}

	if err := writeOutput(cmd.OutOrStdout(), opts.output, opts.format, batch, batch.Text()); err != nil {
		return err
	}

	if opts.strict && (batch.InvalidCount() > 0 || batch.FailedCount() > 0) {
		return errInvalidInput
	}
	return nil
}

// readSources reads the named files, or stdin when there are none.
// Each input is capped at limit bytes.
func readSources(stdin io.Reader, paths []string, limit int64) ([]core.SourceFile, error) {
	if len(paths) == 0 {
		src, err := core.ReadSource("stdin", stdin, limit)
		if err != nil {
			return nil, fmt.Errorf("%s", core.FormatUserError(err))
		}
		return []core.SourceFile{src}, nil
	}

	files := make([]core.SourceFile, 0, len(paths))
	for _, p := range paths {
		src, err := readFile(p, limit)
		if err != nil {
			return nil, err
		}
		files = append(files, src)
	}
	return files, nil
}

func readFile(path string, limit int64) (core.SourceFile, error) {
	in, closeIn, err := openInput(nil, path)
	if err != nil {
		return core.SourceFile{}, err
	}
	defer closeIn()

	src, err := core.ReadSource(filepath.Base(path), in, limit)
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("%s", core.FormatUserError(err))
	}
	return src, nil
}

// openInput opens path, or returns stdin when path is empty.
func openInput(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == "" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text, json, or yaml)", format)
	}
}

// writeOutput renders v in the requested format. Text output is the plain
// string given, followed by a newline when non-empty.
func writeOutput(stdout io.Writer, path, format string, v any, text string) error {
	var data []byte
	switch format {
	case formatJSON:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		data = append(encoded, '\n')
	case formatYAML:
		encoded, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		data = encoded
	default:
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		data = []byte(text)
	}

	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// setupLogging sends logs to stderr so they never mix with converted text.
func setupLogging(stderr io.Writer, verbose bool) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(stderr, logging.Options{Level: level, OmitTime: true}))
}
