package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/repokeeper/internal/config"
	"github.com/naka-gawa/repokeeper/internal/gateway"
	"github.com/naka-gawa/repokeeper/internal/progress"
	"github.com/naka-gawa/repokeeper/internal/report"
	"github.com/naka-gawa/repokeeper/internal/usecase"
)

const defaultDays = 14

// newFetcher builds the GitHub gateway used by prstats.
var newFetcher = gateway.NewGitHubGateway

var prstatsCmd = &cobra.Command{
	Use:   "prstats",
	Short: "Summarises the closed pull requests of a GitHub repository",
	Long: `Collects every closed pull request created within the last --days days and
prints totals, extremes, mean and standard deviation of its commits, changed
files, additions, deletions, net lines of code and comments, followed by the
number of pull requests per author.

When --owner or --repo is omitted they are derived from the URL of --remote.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var cfg config.PRStats
		if err := loadConfig(cmd, &cfg); err != nil {
			return err
		}
		logger, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		token, err := config.ResolveToken(cfg.Token)
		if err != nil {
			return err
		}
		cfg.Token = token

		if cfg.Owner == "" || cfg.Repo == "" {
			inferRepository(ctx, gateway.NewGitGateway(&gateway.ExecRunner{}, logger), &cfg, logger)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		fetcher, err := newFetcher(cfg.Token, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		stderr := cmd.ErrOrStderr()
		collector := usecase.NewCollector(fetcher, logger,
			usecase.WithPageSize(cfg.PageSize),
			usecase.WithConcurrency(cfg.Concurrency),
			usecase.WithProgress(progress.NewSpinner(stderr)),
		)

		if !cfg.SkipPreflight {
			info, err := collector.Preflight(ctx, cfg.Owner, cfg.Repo)
			if err != nil {
				return err
			}
			fmt.Fprintf(stderr, "%s %s (%d closed pull requests)\n",
				color.New(color.Bold).Sprint("Repository:"), info.NameWithOwner, info.ClosedPullRequests)
		}

		collection, err := collector.Collect(ctx, cfg.Owner, cfg.Repo, cfg.Days)
		if err != nil {
			return fmt.Errorf("failed to collect pull request statistics: %w", err)
		}
		summary, err := usecase.Summarize(collection)
		if err != nil {
			return err
		}
		return report.Render(cmd.OutOrStdout(), summary, report.Format(cfg.Format))
	},
}

// inferRepository fills the missing owner and repository from the URL of the
// configured remote. Failures are only logged; validation reports the fields
// that are still empty.
func inferRepository(ctx context.Context, git gateway.Git, cfg *config.PRStats, logger *zap.Logger) {
	remote := cfg.Remote
	if remote == "" {
		remote = usecase.DefaultRemote
	}
	url, err := git.RemoteURL(ctx, remote)
	if err != nil {
		logger.Debug("Could not read remote url", zap.String("remote", remote), zap.Error(err))
		return
	}
	owner, repo, err := gateway.ParseRemoteRepository(url)
	if err != nil {
		logger.Debug("Could not infer repository", zap.Error(err))
		return
	}
	if cfg.Owner == "" {
		cfg.Owner = owner
	}
	if cfg.Repo == "" {
		cfg.Repo = repo
	}
	logger.Debug("Inferred repository from remote",
		zap.String("owner", cfg.Owner),
		zap.String("repo", cfg.Repo))
}

func init() {
	rootCmd.AddCommand(prstatsCmd)
	flags := prstatsCmd.Flags()
	flags.String("token", "", "GitHub API token (default $GITHUB_API_TOKEN, $GITHUB_TOKEN or $GH_TOKEN)")
	flags.StringP("owner", "o", "", "Repository owner (default: derived from the remote)")
	flags.StringP("repo", "r", "", "Repository name (default: derived from the remote)")
	flags.IntP("days", "d", defaultDays, "Number of trailing days to analyse")
	flags.Int("page-size", usecase.DefaultPageSize, "Pull requests requested per page (1-100)")
	flags.Int("concurrency", usecase.DefaultConcurrency, "Parallel pull request detail requests (1-16)")
	format := config.NewChoice(string(report.FormatText), string(report.FormatText), string(report.FormatJSON), string(report.FormatYAML))
	flags.Var(format, "format", format.Usage("Output format"))
	flags.String("remote", usecase.DefaultRemote, "Remote used to infer --owner and --repo")
	flags.Bool("skip-preflight", false, "Skip the repository existence check")
}
