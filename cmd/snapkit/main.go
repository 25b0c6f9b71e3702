// Package main provides the snapkit CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/snapkit/snapkit/internal/bundle"
	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/config"
	"github.com/snapkit/snapkit/internal/logging"
	"github.com/snapkit/snapkit/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	dbFlag      string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snapkit",
	Short: "Catalog installed apps, favorites, wishlist apps and resources",
	Long: `snapkit keeps a local catalog of the applications on this machine.

Core features:
  - Scan the Windows registry for installed applications
  - Pin favorites and launch them with custom commands
  - Track apps you have not installed yet
  - Track files, folders and URLs as resources
  - Export everything to a portable zip bundle and import it elsewhere

Data lives in a single SQLite database (~/.snapkit/snapkit.db by default).
All commands output JSON by default; use --human for tables.
Run 'snapkit gui' for the interactive window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file never overrides variables already set
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path (overrides config and SNAPKIT_DB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(logger *zap.Logger) *storage.DB {
	dbPath, err := config.ResolveDBPath(dbFlag)
	if err != nil {
		exitWithError(ExitConfigError, "resolving database path: %v", err)
	}
	logger.Debug("opening database", zap.String("path", dbPath))

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// newLogger builds the stderr logger for a command.
func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Verbose: verbose})
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	return logger
}

// mustSetup loads config, creates the logger and opens the database.
// The caller closes the DB and syncs the logger.
func mustSetup() (*config.Config, *zap.Logger, *storage.DB) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	return cfg, logger, mustOpenDatabase(logger)
}

// exitCode maps an error to the exit code that describes it.
func exitCode(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, bundle.ErrInvalidBundle),
		errors.Is(err, bundle.ErrChecksumMismatch),
		errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrEmptyPath),
		errors.Is(err, catalog.ErrInvalidKind):
		return ExitDataError
	default:
		return ExitError
	}
}

// exitOnError exits with the code for err, prefixing the message with what failed.
func exitOnError(err error, what string) {
	if err != nil {
		exitWithError(exitCode(err), "%s: %v", what, err)
	}
}
