package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/controlplane-com/kuery/pkg/filters/config"
	"github.com/controlplane-com/kuery/pkg/kuery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "kuery",
		Short: "Escape values and build KQL queries",
		Long: `kuery escapes raw values for use in KQL (Kibana Query Language) expressions
and assembles clauses and named filters into query strings.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newEscapeCmd(),
		newMatchCmd(),
		newPhraseCmd(),
		newFilterCmd(logger),
		newBuildCmd(logger),
		newVersionCmd(),
	)

	return root
}

func newEscapeCmd() *cobra.Command {
	var quotes, asTable bool

	cmd := &cobra.Command{
		Use:   "escape [value...]",
		Short: "Escape values for use as KQL literals",
		Long: `Escape each argument, or each line of stdin when no arguments are given.

By default values are escaped as bare literals. With --quotes only backslashes
and double quotes are escaped, for use between double quotes.`,
		Example: `  kuery escape 'foo and (bar)'
  cat values.txt | kuery escape --quotes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			escape := kuery.EscapeKuery
			if quotes {
				escape = kuery.EscapeQuotes
			}

			values := args
			if len(values) == 0 {
				var err error
				values, err = readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if asTable {
				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Input", "Escaped"})
				for _, v := range values {
					t.AppendRow(table.Row{strconv.Quote(v), escape(v)})
				}
				t.Render()
				return nil
			}

			for _, v := range values {
				if _, err := fmt.Fprintln(out, escape(v)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quotes, "quotes", "q", false, "Escape for use inside double quotes")
	cmd.Flags().BoolVarP(&asTable, "table", "t", false, "Print input and output side by side")

	return cmd
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <field> <value>",
		Short: "Print a field:value clause",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), kuery.Match(args[0], args[1]))
			return err
		},
	}
}

func newPhraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phrase <field> <value>",
		Short: `Print a field:"value" clause`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), kuery.MatchPhrase(args[0], args[1]))
			return err
		},
	}
}

func newFilterCmd(logger *slog.Logger) *cobra.Command {
	var configFile string
	var list bool

	cmd := &cobra.Command{
		Use:   "filter <name>",
		Short: "Render a named filter from a YAML file",
		Example: `  kuery filter errors_only --config filters.yaml
  kuery filter --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := config.NewRegistry()
			if err := registry.LoadFromFile(configFile); err != nil {
				return err
			}
			logger.Debug("loaded filters", "config", configFile, "filters", registry.List())

			out := cmd.OutOrStdout()
			if list {
				for _, name := range registry.List() {
					if _, err := fmt.Fprintln(out, name); err != nil {
						return err
					}
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("filter name is required (or use --list)")
			}

			f, ok := registry.Get(args[0])
			if !ok {
				return fmt.Errorf("filter %q not found in %s", args[0], configFile)
			}

			_, err := fmt.Fprintln(out, f.Query())
			return err
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", getEnv("KUERY_CONFIG", "filters.yaml"), "Path to filter YAML file")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List filter names")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kuery version %s\n", version)
		},
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}
