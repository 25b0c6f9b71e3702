package main

import (
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagCmd)
}

var tagCmd = &cobra.Command{
	Use:   "tag <kind> <id> <tags>",
	Short: "Replace the tags of a catalog row",
	Long: `Replace the tags of a catalog row.

kind is one of: installed, pinned, notinstalled, resource.
Tags are comma-separated; duplicates (case-insensitive) and blanks are
dropped. An empty string clears the tags.

Examples:
  snapkit tag installed 12 browser,daily
  snapkit tag resource 4 ""`,
	Args: cobra.ExactArgs(3),
	RunE: runTag,
}

func runTag(cmd *cobra.Command, args []string) error {
	kind, err := catalog.ParseKind(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	id := mustParseID(args[1], string(kind))

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	exitOnError(db.SetTags(kind, id, args[2]), fmt.Sprintf("tagging %s %d", kind, id))

	tags := catalog.NormalizeTags(args[2])
	if humanOutput {
		if tags == "" {
			outputHuman("Cleared tags of %s %d\n", kind, id)
		} else {
			outputHuman("Tagged %s %d: %s\n", kind, id, tags)
		}
		return nil
	}
	return outputJSON(TagResponse{Status: "updated", Kind: kind, ID: id, Tags: tags})
}
