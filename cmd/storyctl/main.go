// Command storyctl is the operator CLI for the story store: schema migrations
// and read-only inspection of branch graphs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"story-branches/internal/config"
	"story-branches/internal/database"
	"story-branches/internal/interfaces"
	"story-branches/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Global flag values.
var (
	flagEnvFile  string
	flagJSON     bool
	flagLogLevel string
)

// Set by PersistentPreRunE.
var (
	cfg       *config.Config
	cliLogger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storyctl",
	Short:         "Operator tool for the story-branches store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cliLogger, err = logger.New(logger.Config{Level: flagLogLevel, Encoding: "console", OutputPath: "stderr"})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, err = config.LoadStoreConfig(flagEnvFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cliLogger != nil {
			_ = cliLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "optional .env file with STORE_DRIVER, DB_* and SQLITE_PATH")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level for diagnostics on stderr")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(danglingCmd)
	rootCmd.AddCommand(walkCmd)
}

// openRepo открывает хранилище без применения миграций.
func openRepo(ctx context.Context) (interfaces.StoryRepository, func(), error) {
	repo, closeFn, err := database.OpenStoryRepository(ctx, cfg.StoreConfig(false), cliLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return repo, closeFn, nil
}
