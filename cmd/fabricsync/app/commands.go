package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shadeworks/fabricsync/internal/config"
	"github.com/shadeworks/fabricsync/internal/sources/csvdir"
	"github.com/shadeworks/fabricsync/pkg/errors"
	"github.com/shadeworks/fabricsync/pkg/logging"
	"github.com/shadeworks/fabricsync/pkg/reconciler"
)

func (a *App) createSyncCommand() *cobra.Command {
	var (
		rulesPath string
		dataDir   string
		groups    []string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the supply catalog against the target catalog",
		Long: `Sync loads the rule file and the CSV exports from the data directory,
runs the reconciliation, and prints a per-group summary. The full change set
can be written to a JSON file with --out for review or downstream upload
generation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(rulesPath)
			if err != nil {
				return err
			}
			if len(groups) > 0 {
				cfg, err = cfg.Subset(groups)
				if err != nil {
					return err
				}
			}

			rec, err := reconciler.New(cfg.Groups, cfg.ReconcilerOptions()...)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			src := csvdir.New(dataDir)

			supply, err := src.Fetch(ctx, cfg.Categories())
			if err != nil {
				if errors.IsNotFound(err) {
					return fmt.Errorf("no supply export in %s: %w", dataDir, err)
				}
				return err
			}
			targets, prices, err := src.Load(ctx, cfg.Groups.IDs())
			if err != nil {
				return err
			}

			result, err := rec.Run(ctx, supply, targets, prices)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			for _, entry := range result.Log {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s: %s\n",
					entry.Operation.Letter(), entry.GroupID, entry.Identifier, entry.Reason)
			}
			for _, warning := range result.Warnings {
				a.logger.Warn().
					Str("group", warning.GroupID.String()).
					Str("identifier", warning.Identifier).
					Msg(warning.Message)
			}

			if outPath != "" {
				if err := writeResult(outPath, result); err != nil {
					return err
				}
				a.logger.Info().Str("path", outPath).Msg("change set written")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "rules.yaml", "rule file path")
	cmd.Flags().StringVarP(&dataDir, "data-dir", "d", ".", "directory holding supply.csv, targets.csv and pricing.csv")
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "restrict the run to these group IDs")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the full change set to this JSON file")

	return cmd
}

func (a *App) createValidateCommand() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the rule file without running a sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(rulesPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d groups, %d categories\n",
				rulesPath, cfg.Groups.Len(), len(cfg.Categories()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "rules.yaml", "rule file path")
	return cmd
}

func (a *App) createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fabricsync %s (commit %s, built %s)\n", a.version, a.commit, a.date)
		},
	}
}

func writeResult(path string, result *reconciler.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
