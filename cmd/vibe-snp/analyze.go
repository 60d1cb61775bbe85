package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-snp/internal/duckdb"
	"github.com/inodb/vibe-snp/internal/genotype"
	"github.com/inodb/vibe-snp/internal/reference"
	"github.com/inodb/vibe-snp/internal/report"
	"github.com/inodb/vibe-snp/internal/session"
)

// unmatchedListLimit caps how many unmatched variants --diagnostics prints.
const unmatchedListLimit = 20

type analyzeOptions struct {
	outputFile  string
	matchesFile string
	diagnostics bool
	storePath   string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [flags] <genome.txt|->",
		Short: "Match a raw genotype file against the reference tables",
		Long: `Parse a 23andMe raw data file (optionally gzipped, '-' for stdin), match it
against every reference table and print the summary report.`,
		Example: `  vibe-snp analyze genome.txt
  vibe-snp analyze -o dna_summary.txt --diagnostics genome.txt
  vibe-snp analyze --matches matches.tsv genome.txt.gz
  cat genome.txt | vibe-snp analyze -`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Write the summary to a file (e.g. "+report.DefaultSummaryFile+") instead of stdout")
	cmd.Flags().StringVar(&opts.matchesFile, "matches", "", "Write every match as tab-delimited rows to this file")
	cmd.Flags().BoolVar(&opts.diagnostics, "diagnostics", false, "Print match diagnostics to stderr")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "Also write matches to a DuckDB database at this path")

	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, inputPath string, opts analyzeOptions) error {
	var store *duckdb.Store
	if opts.storePath != "" {
		var err error
		store, err = duckdb.Open(opts.storePath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	res, err := analyzeFile(cmd, a, inputPath, store)
	if err != nil {
		return err
	}

	if opts.outputFile != "" {
		if err := report.WriteSummaryFile(opts.outputFile, res.Results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Summary written to %s\n", opts.outputFile)
	} else if err := report.WriteSummary(cmd.OutOrStdout(), res.Results); err != nil {
		return err
	}

	if opts.matchesFile != "" {
		if err := writeMatchesFile(opts.matchesFile, res); err != nil {
			return err
		}
	}

	if opts.diagnostics {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped malformed lines: %d\n", res.Skipped)
		if err := report.WriteDiagnostics(cmd.ErrOrStderr(), res.Results, res.Diagnostics, unmatchedListLimit); err != nil {
			return err
		}
	}

	return nil
}

// analyzeFile parses inputPath and matches it against the configured catalog.
func analyzeFile(cmd *cobra.Command, a *app, inputPath string, store *duckdb.Store) (*session.Result, error) {
	parser, err := genotype.NewParser(inputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Hint: Check that the file path is correct\n")
		}
		return nil, err
	}
	defer parser.Close()

	catalog := reference.NewCatalog(a.cfg.DataDir, a.cfg.Sources())
	catalog.SetLogger(a.logger)

	opts := []session.Option{session.WithLogger(a.logger)}
	if store != nil {
		opts = append(opts, session.WithStore(store))
	}
	sess := session.New(catalog, opts...)

	res, err := sess.AnalyzeParser(cmd.Context(), parser)
	if err != nil {
		return nil, err
	}

	if catalog.RecordCount() == 0 {
		a.logger.Warn("no reference records loaded",
			zap.String("data_dir", a.cfg.DataDir))
		fmt.Fprintf(cmd.ErrOrStderr(), "Hint: Download reference tables with: vibe-snp download\n")
	}
	return res, nil
}

func writeMatchesFile(path string, res *session.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating matches file: %w", err)
	}
	defer f.Close()

	w := report.NewMatchWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResults(res.Results); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
