package main

import (
	"context"
	"fmt"

	"github.com/snapkit/snapkit/internal/bundle"
	"github.com/snapkit/snapkit/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importRestoreTo string
	importDryRun    bool
)

func init() {
	importCmd.Flags().StringVar(&importRestoreTo, "restore-to", "", "Directory receiving bundled resource files (default: restore_dir from config)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without making changes")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <bundle.zip>",
	Short: "Import a zip bundle into the catalog",
	Long: `Import a bundle written by 'snapkit export'.

Rows already in the catalog (same registry key, name, or name and path)
are skipped, so importing the same bundle twice adds nothing. Pins whose
app cannot be found are skipped. With --restore-to, bundled files and
folders are extracted there and verified against their checksums; a
mismatch aborts the whole import.

Examples:
  snapkit import backup.zip
  snapkit import backup.zip --restore-to ~/Restored
  snapkit import backup.zip --dry-run --human`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	restoreTo := config.ExpandPath(importRestoreTo)
	if restoreTo == "" {
		restoreTo = cfg.RestoreDir
	}
	logger.Debug("importing", zap.String("bundle", args[0]), zap.String("restore_to", restoreTo), zap.Bool("dry_run", importDryRun))

	result, err := bundle.Import(context.Background(), db, args[0], bundle.ImportOptions{
		RestoreTo: restoreTo,
		DryRun:    importDryRun,
		Logger:    logger,
	})
	exitOnError(err, "importing")

	if humanOutput {
		verb := "Imported"
		if result.DryRun {
			fmt.Println("Dry run - no changes made.")
			verb = "Would import"
		}
		fmt.Printf("%s from %s:\n", verb, args[0])
		fmt.Printf("  Installed apps:     %d\n", result.Counts.InstalledApps)
		fmt.Printf("  Pinned apps:        %d\n", result.Counts.PinnedApps)
		fmt.Printf("  Not-installed apps: %d\n", result.Counts.NotInstalledApps)
		fmt.Printf("  Resources:          %d\n", result.Counts.ResourceItems)
		if restoreTo != "" && !result.DryRun {
			fmt.Printf("  Files restored:     %d (to %s)\n", result.FilesRestored, restoreTo)
		}
		return nil
	}
	return outputJSON(result)
}
