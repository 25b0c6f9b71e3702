package main

import (
	"context"
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/launcher"
	"github.com/snapkit/snapkit/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listPinnedTag string

func init() {
	listPinnedCmd.Flags().StringVar(&listPinnedTag, "tag", "", "Only list pins with this tag")

	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
	rootCmd.AddCommand(setLaunchCmd)
	rootCmd.AddCommand(listPinnedCmd)
	rootCmd.AddCommand(runCmd)
}

var pinCmd = &cobra.Command{
	Use:   "pin <app-id>",
	Short: "Pin an installed application",
	Long: `Pin an installed application to the favorites list.

Pinning an app that is already pinned returns the existing pin.

Examples:
  snapkit pin 12`,
	Args: cobra.ExactArgs(1),
	RunE: runPin,
}

func runPin(cmd *cobra.Command, args []string) error {
	appID := mustParseID(args[0], "installed app")

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	pin, created, err := db.PinApp(appID)
	exitOnError(err, "pinning app")

	status := "pinned"
	if !created {
		status = "already_pinned"
	}
	logger.Debug("pin", zap.String("status", status), zap.Int64("pin_id", pin.ID))

	if humanOutput {
		if created {
			outputHuman("Pinned %s (pin %d)\n", pin.App.Name, pin.ID)
		} else {
			outputHuman("%s is already pinned (pin %d)\n", pin.App.Name, pin.ID)
		}
		return nil
	}
	return outputJSON(PinResponse{Status: status, Pin: pin})
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <pin-id>",
	Short: "Remove a pin",
	Long: `Remove a pin. The installed application itself is kept.

Examples:
  snapkit unpin 3`,
	Args: cobra.ExactArgs(1),
	RunE: runUnpin,
}

func runUnpin(cmd *cobra.Command, args []string) error {
	pinID := mustParseID(args[0], "pin")

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	exitOnError(db.UnpinApp(pinID), fmt.Sprintf("unpinning %d", pinID))

	if humanOutput {
		outputHuman("Unpinned %d\n", pinID)
		return nil
	}
	return outputJSON(StatusResponse{Status: "unpinned", ID: pinID})
}

var setLaunchCmd = &cobra.Command{
	Use:   "set-launch <pin-id> <command>",
	Short: "Set the launch command of a pin",
	Long: `Set the command that launches a pinned application.

An empty command clears it; the executable is then inferred from the
app's install location.

Examples:
  snapkit set-launch 3 '"C:\Program Files\Mozilla Firefox\firefox.exe" --private-window'
  snapkit set-launch 3 ""`,
	Args: cobra.ExactArgs(2),
	RunE: runSetLaunch,
}

func runSetLaunch(cmd *cobra.Command, args []string) error {
	pinID := mustParseID(args[0], "pin")

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	exitOnError(db.SetLaunchCommand(pinID, args[1]), fmt.Sprintf("setting launch command of %d", pinID))

	if humanOutput {
		if args[1] == "" {
			outputHuman("Cleared launch command of pin %d\n", pinID)
		} else {
			outputHuman("Set launch command of pin %d\n", pinID)
		}
		return nil
	}
	return outputJSON(RunResponse{Status: "updated", PinID: pinID, Command: args[1]})
}

var listPinnedCmd = &cobra.Command{
	Use:   "list-pinned",
	Short: "List pinned applications",
	Long: `List pinned applications with their launch commands, ordered by app name.
Pins without a command show "(auto)": the executable is inferred at launch.

Examples:
  snapkit list-pinned --human
  snapkit list-pinned --tag daily`,
	Args: cobra.NoArgs,
	RunE: runListPinned,
}

func runListPinned(cmd *cobra.Command, args []string) error {
	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	pins, err := db.ListPinnedApps(storage.ListFilter{Tag: listPinnedTag})
	exitOnError(err, "listing pinned apps")
	if pins == nil {
		pins = []catalog.PinnedApp{}
	}

	if humanOutput {
		rows := make([][]string, len(pins))
		for i, p := range pins {
			command := p.LaunchCommand
			if command == "" {
				command = "(auto)"
			}
			rows[i] = []string{
				formatID(p.ID),
				truncateString(p.App.Name, NameMaxLen),
				truncateString(command, PathMaxLen),
				orDash(p.Tags),
				relativeTime(p.PinnedAt),
			}
		}
		printTable([]string{"ID", "NAME", "COMMAND", "TAGS", "PINNED"}, rows, "pinned apps")
		return nil
	}
	return outputJSON(pins)
}

var runCmd = &cobra.Command{
	Use:   "run <pin-id>",
	Short: "Launch a pinned application",
	Long: `Launch a pinned application with its launch command, or with the
executable inferred from its install location when no command is set.
Returns as soon as the application has started.

Examples:
  snapkit run 3`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	pinID := mustParseID(args[0], "pin")

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	pin, err := db.GetPinnedApp(pinID)
	exitOnError(err, "loading pin")
	if pin == nil {
		exitWithError(ExitNotFound, "pin %d not found", pinID)
	}

	command, err := launcher.ResolveCommand(*pin)
	if err != nil {
		exitWithError(ExitDataError, "%v\n  Hint: Use 'snapkit set-launch %d <command>' to set one", err, pinID)
	}
	logger.Info("launching", zap.String("app", pin.App.Name), zap.String("command", command))

	exitOnError(launcher.Launch(context.Background(), command), "launching")

	if humanOutput {
		outputHuman("Launched %s\n", pin.App.Name)
		return nil
	}
	return outputJSON(RunResponse{Status: "launched", PinID: pinID, Command: command})
}
