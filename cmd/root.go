// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/repokeeper/internal/config"
	"github.com/naka-gawa/repokeeper/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "repokeeper",
	Short: "Housekeeping tools for git repositories hosted on GitHub.",
	Long: `repokeeper helps repository maintainers with two chores:
removing local branches whose remote counterpart is gone (clean),
and summarising the closed pull requests of a GitHub repository
over a trailing window of days (prstats).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	logLevel := config.NewChoice(string(logging.LevelWarn),
		string(logging.LevelDebug), string(logging.LevelInfo), string(logging.LevelWarn), string(logging.LevelError))
	flags.Var(logLevel, "log-level", logLevel.Usage("Log level"))
	logFormat := config.NewChoice(string(logging.FormatConsole), string(logging.FormatConsole), string(logging.FormatStructured))
	flags.Var(logFormat, "log-format", logFormat.Usage("Log format"))
	flags.String("config", "", "Path to a configuration file (default ./repokeeper.yaml)")
}

// loadConfig resolves the settings of cmd into target.
func loadConfig(cmd *cobra.Command, target any) error {
	configPath, _ := cmd.Flags().GetString("config")
	return config.Load(cmd.Flags(), configPath, target)
}

func newLogger(cfg config.Logging) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:   logging.Level(cfg.LogLevel),
		Format:  logging.Format(cfg.LogFormat),
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
