package main

import (
	"context"
	"runtime"

	"github.com/snapkit/snapkit/internal/scanner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanMock bool

func init() {
	scanCmd.Flags().BoolVar(&scanMock, "mock", false, "Save the fixed development apps instead of reading the registry")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the registry for installed applications",
	Long: `Scan the Windows uninstall registry keys for installed applications.

Apps are matched by registry key: known apps have their name, publisher,
location and version refreshed (tags are kept), new apps are added.
On systems without a registry the scan finds nothing; use --mock to
load a fixed set of development apps.

Examples:
  snapkit scan
  snapkit scan --mock --human`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	ctx := context.Background()

	source := "registry"
	var apps []scanner.ScannedApp
	if scanMock {
		source = "mock"
		apps = scanner.MockApps()
	} else {
		if runtime.GOOS != "windows" {
			logger.Warn("no registry on this platform; use --mock for development data", zap.String("os", runtime.GOOS))
		}
		var err error
		apps, err = scanner.ScanRegistry(ctx)
		exitOnError(err, "scanning registry")
	}
	logger.Info("scan complete", zap.String("source", source), zap.Int("found", len(apps)))

	added, err := scanner.Save(ctx, db, apps, logger)
	exitOnError(err, "saving scan")

	total, err := db.CountInstalledApps()
	exitOnError(err, "counting installed apps")

	result := ScanResult{Source: source, Found: len(apps), Added: added, Total: total}
	if humanOutput {
		outputHuman("Scanned %s: found %d apps\n", source, result.Found)
		outputHuman("  Added:   %d new apps\n", result.Added)
		outputHuman("  Updated: %d existing apps\n", result.Found-result.Added)
		outputHuman("  Total:   %d installed apps\n", result.Total)
		return nil
	}
	return outputJSON(result)
}
