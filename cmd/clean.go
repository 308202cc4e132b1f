package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/repokeeper/internal/config"
	"github.com/naka-gawa/repokeeper/internal/domain"
	"github.com/naka-gawa/repokeeper/internal/gateway"
	"github.com/naka-gawa/repokeeper/internal/usecase"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deletes local branches that no longer exist on the remote",
	Long: `Fetches with pruning, compares local branches against the remote-tracking
branches of the remote and deletes every local branch whose counterpart is gone.
The checked-out branch is never deleted. Use --dry-run to only list them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Clean
		if err := loadConfig(cmd, &cfg); err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		logger, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		git := gateway.NewGitGateway(&gateway.ExecRunner{}, logger)
		result, err := usecase.NewReconciler(git, cfg.Remote, logger).Reconcile(cmd.Context(), cfg.DryRun)
		if err != nil {
			return fmt.Errorf("failed to check branches: %w", err)
		}

		printCleanResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func printCleanResult(w io.Writer, result *domain.ReconcileResult) {
	for _, branch := range result.Orphans {
		fmt.Fprintf(w, "Branch %s is no longer on the remote host\n", branch)
	}
	fmt.Fprintf(w, "Orphaned branches: %v\n", result.Orphans)

	if result.DryRun {
		fmt.Fprintln(w, "Did a dry run. No branches were removed.")
		return
	}
	for _, branch := range result.Deleted {
		fmt.Fprintf(w, "%s %s\n", color.GreenString("Deleted"), branch)
	}
	for _, branch := range result.Failed {
		fmt.Fprintf(w, "%s %s\n", color.RedString("Failed to delete"), branch)
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "List orphaned branches without deleting them")
	cleanCmd.Flags().String("remote", usecase.DefaultRemote, "Remote whose tracking branches are compared")
}
