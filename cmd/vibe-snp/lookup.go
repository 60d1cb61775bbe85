package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-snp/internal/duckdb"
	"github.com/inodb/vibe-snp/internal/report"
)

func newLookupCmd(a *app) *cobra.Command {
	var (
		storePath string
		gene      string
	)

	cmd := &cobra.Command{
		Use:   "lookup --store <path> [--gene G | <rsid>]",
		Short: "Query matches saved with analyze --store",
		Example: `  vibe-snp analyze --store session.duckdb genome.txt
  vibe-snp lookup --store session.duckdb rs4680
  vibe-snp lookup --store session.duckdb --gene MTHFR
  vibe-snp lookup --store session.duckdb`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				return &usageError{err: fmt.Errorf("--store is required")}
			}
			if _, err := os.Stat(storePath); err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			store, err := duckdb.Open(storePath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case len(args) == 1:
				rows, err := store.LookupRSID(args[0])
				if err != nil {
					return err
				}
				return printRows(out, rows)
			case gene != "":
				rows, err := store.SearchByGene(gene)
				if err != nil {
					return err
				}
				return printRows(out, rows)
			default:
				counts, err := store.CategoryCounts()
				if err != nil {
					return err
				}
				for _, c := range counts {
					fmt.Fprintf(out, "%-20s %d\n", c.Category, c.Count)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "DuckDB database written by analyze --store")
	cmd.Flags().StringVar(&gene, "gene", "", "List matches for a gene")

	return cmd
}

// printRows writes stored matches in the analyze --matches layout.
func printRows(w io.Writer, rows []duckdb.MatchRow) error {
	mw := report.NewMatchWriter(w)
	if err := mw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		if err := mw.Write(r.Category, r.Match()); err != nil {
			return err
		}
	}
	return mw.Flush()
}
