package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/controlplane-com/kuery/pkg/filters/generator"
	"github.com/controlplane-com/kuery/pkg/filters/parser"
	"github.com/spf13/cobra"
)

// buildOptions holds the flags of the build command.
type buildOptions struct {
	file       string
	skipHeader bool
	batchSize  int
	combinator string
}

func newBuildCmd(logger *slog.Logger) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build KQL clauses from a CSV of field,value[,op] rows",
		Long: `Read "field,value[,op]" rows and print one KQL clause per row, or one
combined query per batch when --batch-size is greater than 1.

Rows that cannot be converted are reported and skipped. Files ending in .tsv
are read tab-separated.`,
		Example: `  kuery build -f filters.csv --skip-header
  cat rows.csv | kuery build -f - -b 50 --combinator and`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts, logger)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to CSV file (required, use - for stdin)")
	cmd.Flags().BoolVarP(&opts.skipHeader, "skip-header", "s", false, "Skip the first row of the CSV file")
	cmd.Flags().IntVarP(&opts.batchSize, "batch-size", "b", getEnvInt("KUERY_BATCH_SIZE", 1), "Number of clauses per query")
	cmd.Flags().StringVar(&opts.combinator, "combinator", "or", "Operator joining batched clauses (or, and)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions, logger *slog.Logger) error {
	if opts.combinator != "or" && opts.combinator != "and" {
		return fmt.Errorf("invalid --combinator %q (want or, and)", opts.combinator)
	}

	// Determine delimiter based on file extension
	delimiter := ','
	if strings.HasSuffix(strings.ToLower(opts.file), ".tsv") {
		delimiter = '\t'
	}

	var input io.Reader
	if opts.file == "-" {
		input = cmd.InOrStdin()
	} else {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("opening CSV file: %w", err)
		}
		defer func(f *os.File) {
			_ = f.Close()
		}(f)
		input = f
	}

	return processRows(input, opts, delimiter, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

func processRows(input io.Reader, opts *buildOptions, delimiter rune, output, errOutput io.Writer, logger *slog.Logger) error {
	csvProcessor, err := parser.NewCSVProcessor(input, opts.skipHeader, delimiter)
	if err != nil {
		return err
	}

	gen := generator.NewQueryGenerator(opts.combinator, opts.batchSize)
	var parseErrors []*parser.ParseError
	successCount := 0

	for {
		record, lineNum, err := csvProcessor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		clause, err := parser.ConvertRow(record, lineNum)
		if err != nil {
			var parseErr *parser.ParseError
			if errors.As(err, &parseErr) {
				_, _ = fmt.Fprintf(errOutput, "warning: %v\n", parseErr)
				parseErrors = append(parseErrors, parseErr)
				continue
			}
			return err
		}

		if q := gen.AddClause(clause); q != "" {
			if _, err := fmt.Fprintln(output, q); err != nil {
				return fmt.Errorf("write error (downstream process may have died): %w", err)
			}
		}
		successCount++
	}

	// Flush any remaining batch
	if q := gen.Flush(); q != "" {
		if _, err := fmt.Fprintln(output, q); err != nil {
			return fmt.Errorf("write error (downstream process may have died): %w", err)
		}
	}

	logger.Info("build completed", "rows", successCount, "skipped", len(parseErrors),
		"batchSize", opts.batchSize, "combinator", gen.Combinator())

	if len(parseErrors) > 0 {
		_, _ = fmt.Fprintf(errOutput, "\n--- Parse Error Summary ---\n")
		_, _ = fmt.Fprintf(errOutput, "Rows processed successfully: %d\n", successCount)
		_, _ = fmt.Fprintf(errOutput, "Rows skipped due to errors: %d\n", len(parseErrors))
		return fmt.Errorf("%d rows skipped, first: %w", len(parseErrors), parseErrors[0])
	}

	return nil
}
