package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-snp/internal/explain"
	"github.com/inodb/vibe-snp/internal/reference"
)

func newExplainCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "explain [flags] <genome.txt|-> <rsid>",
		Short: "Explain what your genotype at a matched variant means",
		Long: `Analyze a genotype file, pick the first reference match for <rsid> in each
category (or only --category) and ask the configured language model to explain it.
Explanation failures are printed, never fatal.`,
		Example: `  vibe-snp explain genome.txt rs4680
  vibe-snp explain --category pharma genome.txt rs1801133`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, a, args[0], args[1], category)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only explain the match from this category (key or label)")

	return cmd
}

func runExplain(cmd *cobra.Command, a *app, inputPath, rsid, category string) error {
	var only *reference.Category
	if category != "" {
		cat, err := reference.ParseCategory(category)
		if err != nil {
			return &usageError{err: err}
		}
		only = &cat
	}

	res, err := analyzeFile(cmd, a, inputPath, nil)
	if err != nil {
		return err
	}

	found := res.Find(rsid)
	if only != nil {
		filtered := found[:0]
		for _, cm := range found {
			if cm.Category == *only {
				filtered = append(filtered, cm)
			}
		}
		found = filtered
	}
	if len(found) == 0 {
		return fmt.Errorf("no reference match for %s", strings.TrimSpace(rsid))
	}

	explainer, err := newExplainer(cmd.Context(), a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, cm := range found {
		if i > 0 {
			fmt.Fprintln(out)
		}
		m := cm.Match
		fmt.Fprintf(out, "### %s: %s (%s), genotype %s\n", cm.Category.Label(), m.RSID(), m.Gene(), m.Genotype())
		fmt.Fprintln(out, explainer.ExplainMatch(cmd.Context(), m))
	}
	return nil
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ask <question...>",
		Short:   "Ask the language model a free-form genetics question",
		Example: `  vibe-snp ask "What does MTHFR do?"`,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			explainer, err := newExplainer(cmd.Context(), a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), explainer.Ask(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
}

// newExplainer builds an Explainer from configuration. A backend that cannot
// be created is reported through the Explainer like any other failure.
func newExplainer(ctx context.Context, a *app) (*explain.Explainer, error) {
	svc, err := explain.NewService(ctx, a.cfg.ExplainService())
	if err != nil {
		a.logger.Warn("explanation service unavailable", zap.Error(err))
		svc = explain.Unavailable(err)
	}

	explainer, err := explain.NewExplainer(svc, a.cfg.ExplainOptions())
	if err != nil {
		return nil, err
	}
	explainer.SetLogger(a.logger)
	return explainer, nil
}
