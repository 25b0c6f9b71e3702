package main

import (
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/storage"
	"github.com/spf13/cobra"
)

var (
	addNotInstalledURL  string
	addNotInstalledDesc string
	addNotInstalledTags string

	listNotInstalledTag string
)

func init() {
	addNotInstalledCmd.Flags().StringVar(&addNotInstalledURL, "url", "", "Download URL")
	addNotInstalledCmd.Flags().StringVar(&addNotInstalledDesc, "desc", "", "Description")
	addNotInstalledCmd.Flags().StringVar(&addNotInstalledTags, "tags", "", "Comma-separated tags")
	rootCmd.AddCommand(addNotInstalledCmd)

	listNotInstalledCmd.Flags().StringVar(&listNotInstalledTag, "tag", "", "Only list apps with this tag")
	rootCmd.AddCommand(listNotInstalledCmd)

	rootCmd.AddCommand(deleteNotInstalledCmd)
}

var addNotInstalledCmd = &cobra.Command{
	Use:   "add-notinstalled <name>",
	Short: "Track an application you have not installed yet",
	Long: `Track an application you want to install later.

Examples:
  snapkit add-notinstalled Blender --url https://www.blender.org/download/
  snapkit add-notinstalled OBS --desc "Screen recording" --tags video`,
	Args: cobra.ExactArgs(1),
	RunE: runAddNotInstalled,
}

func runAddNotInstalled(cmd *cobra.Command, args []string) error {
	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	app := &catalog.NotInstalledApp{
		Name:        args[0],
		DownloadURL: addNotInstalledURL,
		Description: addNotInstalledDesc,
		Tags:        addNotInstalledTags,
	}
	exitOnError(db.AddNotInstalledApp(app), "adding not-installed app")

	if humanOutput {
		outputHuman("Added not-installed app %d: %s\n", app.ID, app.Name)
		return nil
	}
	return outputJSON(app)
}

var listNotInstalledCmd = &cobra.Command{
	Use:   "list-notinstalled",
	Short: "List tracked applications that are not installed",
	Args:  cobra.NoArgs,
	RunE:  runListNotInstalled,
}

func runListNotInstalled(cmd *cobra.Command, args []string) error {
	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	apps, err := db.ListNotInstalledApps(storage.ListFilter{Tag: listNotInstalledTag})
	exitOnError(err, "listing not-installed apps")
	if apps == nil {
		apps = []catalog.NotInstalledApp{}
	}

	if humanOutput {
		rows := make([][]string, len(apps))
		for i, a := range apps {
			rows[i] = []string{
				formatID(a.ID),
				truncateString(a.Name, NameMaxLen),
				truncateString(orDash(a.DownloadURL), PathMaxLen),
				orDash(a.Tags),
				relativeTime(a.AddedAt),
			}
		}
		printTable([]string{"ID", "NAME", "URL", "TAGS", "ADDED"}, rows, "not-installed apps")
		return nil
	}
	return outputJSON(apps)
}

var deleteNotInstalledCmd = &cobra.Command{
	Use:   "delete-notinstalled <id>",
	Short: "Stop tracking a not-installed application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteNotInstalled,
}

func runDeleteNotInstalled(cmd *cobra.Command, args []string) error {
	id := mustParseID(args[0], "not-installed app")

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	exitOnError(db.DeleteNotInstalledApp(id), fmt.Sprintf("deleting not-installed app %d", id))

	if humanOutput {
		outputHuman("Deleted not-installed app %d\n", id)
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted", ID: id})
}
