package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapkit/snapkit/internal/clipboard"
	"github.com/snapkit/snapkit/internal/launcher"
	"github.com/snapkit/snapkit/internal/opener"
	"github.com/snapkit/snapkit/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var guiTab int

func init() {
	guiCmd.Flags().IntVar(&guiTab, "tab", 1, "Tab to open on: 1 local scan, 2 pinned, 3 not installed, 4 resources")
	rootCmd.AddCommand(guiCmd)
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the interactive window",
	Long: `Open the interactive window with four tabs: Local Scan, Pinned,
Not Installed and Resources.

Keys:
  tab/shift+tab, 1-4  switch tabs
  /                   search the current tab by name
  a                   add a row (Local Scan, Not Installed, Resources)
  p                   pin the selected app (Local Scan)
  enter               launch a pin or open a resource
  e                   edit a pin's launch command
  d                   unpin or delete the selected row
  y                   copy path, command or URL to the clipboard
  r                   reload
  q                   quit

The window reloads when another snapkit process changes the database.`,
	Args: cobra.NoArgs,
	RunE: runGUI,
}

func runGUI(cmd *cobra.Command, args []string) error {
	if guiTab < 1 || guiTab > int(tui.TabResources)+1 {
		exitWithError(ExitError, "--tab must be between 1 and %d", int(tui.TabResources)+1)
	}

	cfg, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("opening window", zap.String("db", db.Path()))
	return tui.Run(ctx, tui.Deps{
		DB:     db,
		Launch: launcher.Launch,
		Open:   opener.New(cfg.Browser).Open,
		Copy:   clipboard.Copy,
		Logger: logger,
		Tab:    tui.Tab(guiTab - 1),
	})
}
