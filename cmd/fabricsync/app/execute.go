package app

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the fabricsync CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "fabricsync",
		Short:   "Supply-catalog reconciliation for fabric variants",
		Version: a.version,
		Long: `Fabricsync compares a supplier's catalog of fabric variants against the
internal product catalog and reports the changes needed to bring it up to
date: new variants, supplier-code corrections, deprecations, and derived
sell/cost pricing.

The engine never writes to either catalog. It produces an explainable change
set with a reason for every row, for review before anything is applied.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setupLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLog, "log-json", false, "force JSON log output")

	rootCmd.SetVersionTemplate("fabricsync {{.Version}}\n")

	rootCmd.AddCommand(a.createSyncCommand())
	rootCmd.AddCommand(a.createValidateCommand())
	rootCmd.AddCommand(a.createVersionCommand())

	return rootCmd
}
