// Package commands implements the rangelist CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/manan/range-list/pkg/config"
	"github.com/manan/range-list/pkg/observability"
	"github.com/manan/range-list/pkg/version"
)

// rootOptions carries the persistent flags and the loaded configuration
// shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	quiet      bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the rangelist root command with all subcommands
// attached.
func NewRootCommand() *cobra.Command {
	ro := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "rangelist",
		Short: "Sparse interval intensity accumulator",
		Long: `rangelist maintains a sparse breakpoint list mapping positions to
intensity values, with range-additive and range-overwrite updates.

Commands:
  replay    Apply an op script and print the resulting breakpoints
  demo      Walk through the canonical example sequences
  render    Chart a script's final intensity profile as HTML
  bench     Run a seeded synthetic op stream`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: ro.setup,
	}

	rootCmd.PersistentFlags().StringVar(&ro.configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&ro.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(NewReplayCommand(ro))
	rootCmd.AddCommand(NewDemoCommand(ro))
	rootCmd.AddCommand(NewRenderCommand(ro))
	rootCmd.AddCommand(NewBenchCommand(ro))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// setup loads the configuration and installs the default logger. The
// verbosity flags override the configured level.
func (ro *rootOptions) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(ro.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if ro.verbose {
		level = "debug"
	}

	if ro.quiet {
		level = "error"
	}

	ro.cfg = cfg
	ro.logger = observability.NewLogger(level, cfg.Logging.Format)
	slog.SetDefault(ro.logger)

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "rangelist %s (commit: %s)\n", version.Version, version.GitHash)
		},
	}
}
