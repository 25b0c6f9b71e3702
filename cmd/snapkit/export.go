package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/snapkit/snapkit/internal/bundle"
	"github.com/spf13/cobra"
)

var exportResources string

func init() {
	exportCmd.Flags().StringVar(&exportResources, "resources", "",
		`Comma-separated resource IDs whose files are copied ("none" copies no files; default all)`)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [output]",
	Short: "Export the catalog to a zip bundle",
	Long: `Export every catalog row, plus copies of local resource files and
folders, to a portable zip bundle.

The output defaults to snapkit_export_<timestamp>.zip in the current
directory. --resources limits which resources have their files copied;
the manifest always lists every row.

Examples:
  snapkit export
  snapkit export ~/backup/snapkit.zip
  snapkit export --resources 1,4
  snapkit export --resources none`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	include, err := parseResourceSelection(exportResources)
	if err != nil {
		exitWithError(ExitError, "invalid --resources: %v", err)
	}

	output := defaultExportName(time.Now())
	if len(args) == 1 {
		output = args[0]
	}

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	result, err := bundle.Export(context.Background(), db, output, bundle.ExportOptions{
		IncludeResources: include,
		Logger:           logger,
	})
	exitOnError(err, "exporting")

	if humanOutput {
		fmt.Printf("Exported to %s (%s)\n", result.Path, humanize.Bytes(uint64(result.Bytes)))
		fmt.Printf("  Installed apps:     %d\n", result.Counts.InstalledApps)
		fmt.Printf("  Pinned apps:        %d\n", result.Counts.PinnedApps)
		fmt.Printf("  Not-installed apps: %d\n", result.Counts.NotInstalledApps)
		fmt.Printf("  Resources:          %d\n", result.Counts.ResourceItems)
		fmt.Printf("  Copied resources:   %d\n", result.FilesCopied)
		return nil
	}
	return outputJSON(result)
}

// defaultExportName returns snapkit_export_YYYYMMDD_HHMMSS.zip for t.
func defaultExportName(t time.Time) string {
	return "snapkit_export_" + t.Format("20060102_150405") + ".zip"
}

// parseResourceSelection interprets --resources: empty selects every
// resource (nil), "none" selects no resource files.
func parseResourceSelection(s string) ([]int64, error) {
	switch s {
	case "":
		return nil, nil
	case "none":
		return []int64{}, nil
	}
	ids, err := parseIDList(s)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no resource IDs given")
	}
	return ids, nil
}
