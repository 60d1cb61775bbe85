// Package main provides the vibe-snp command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-snp/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by invalid command-line arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so failures exit with ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// app holds state shared by all subcommands.
type app struct {
	cfgFile string
	dataDir string
	verbose bool

	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd(&app{v: viper.New()})
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(root.ErrOrStderr(), "\n%s", cmd.UsageString())
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe-snp",
		Short: "vibe-snp - Personal genotype explorer",
		Long: `vibe-snp matches a 23andMe raw genotype file against curated reference
tables (traits, pharmacogenomics, nutrigenomics, ancestry, ClinVar, drug
sensitivities, immune) and explains matched variants in plain language.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default: ~/"+config.FileName+")")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory holding the reference tables")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newAnalyzeCmd(a))
	cmd.AddCommand(newExplainCmd(a))
	cmd.AddCommand(newAskCmd(a))
	cmd.AddCommand(newLookupCmd(a))
	cmd.AddCommand(newDownloadCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// init loads configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	logger, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	v := a.v
	config.Setup(v, a.cfgFile)
	if err := config.Read(v); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("data-dir"); f != nil && f.Changed {
		v.Set("data_dir", a.dataDir)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("configuration loaded",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.String("data_dir", cfg.DataDir))
	return nil
}

// newLogger builds a stderr console logger at warn level, debug when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !verbose
	return cfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-snp version %s (%s) built %s\n", version, commit, date)
		},
	}
}
