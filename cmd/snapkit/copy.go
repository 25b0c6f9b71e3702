package main

import (
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/clipboard"
	"github.com/snapkit/snapkit/internal/storage"
	"github.com/spf13/cobra"
)

var copyPrint bool

func init() {
	copyCmd.Flags().BoolVar(&copyPrint, "print", false, "Print the text instead of copying it to the clipboard")
	rootCmd.AddCommand(copyCmd)
}

var copyCmd = &cobra.Command{
	Use:   "copy <kind> <id>",
	Short: "Copy a row's path, command or URL to the clipboard",
	Long: `Copy the most useful text of a catalog row to the clipboard:

  installed     install location, else name
  pinned        launch command, else the app's install location or name
  notinstalled  download URL, else name
  resource      path or URL

Examples:
  snapkit copy pinned 3
  snapkit copy resource 4 --print`,
	Args: cobra.ExactArgs(2),
	RunE: runCopy,
}

func runCopy(cmd *cobra.Command, args []string) error {
	kind, err := catalog.ParseKind(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	id := mustParseID(args[1], string(kind))

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	text, err := copyText(db, kind, id)
	exitOnError(err, "loading row")

	status := "printed"
	if !copyPrint {
		exitOnError(clipboard.Copy(text), "copying")
		status = "copied"
	}

	if humanOutput {
		if copyPrint {
			outputHuman("%s\n", text)
		} else {
			outputHuman("Copied: %s\n", text)
		}
		return nil
	}
	return outputJSON(CopyResponse{Status: status, Kind: kind, ID: id, Text: text})
}

// copyText loads a row and returns its clipboard text.
func copyText(db *storage.DB, kind catalog.Kind, id int64) (string, error) {
	notFound := fmt.Errorf("%s %d: %w", kind, id, storage.ErrNotFound)

	switch kind {
	case catalog.KindInstalled:
		a, err := db.GetInstalledApp(id)
		if err != nil {
			return "", err
		}
		if a == nil {
			return "", notFound
		}
		return a.CopyText(), nil
	case catalog.KindPinned:
		p, err := db.GetPinnedApp(id)
		if err != nil {
			return "", err
		}
		if p == nil {
			return "", notFound
		}
		return p.CopyText(), nil
	case catalog.KindNotInstalled:
		a, err := db.GetNotInstalledApp(id)
		if err != nil {
			return "", err
		}
		if a == nil {
			return "", notFound
		}
		return a.CopyText(), nil
	case catalog.KindResource:
		r, err := db.GetResource(id)
		if err != nil {
			return "", err
		}
		if r == nil {
			return "", notFound
		}
		return r.CopyText(), nil
	default:
		return "", catalog.ErrInvalidKind
	}
}
