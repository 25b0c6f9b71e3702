package main

import (
	"context"
	"fmt"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/snapkit/snapkit/internal/opener"
	"github.com/snapkit/snapkit/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// autoType asks add-resource to detect the resource type from the path.
const autoType = "auto"

var (
	addResourceType string
	addResourceTags string

	listResourcesTag string
)

func init() {
	addResourceCmd.Flags().StringVarP(&addResourceType, "type", "t", autoType,
		"Resource type: file, folder, url, video, image, document, archive, or auto")
	addResourceCmd.Flags().StringVar(&addResourceTags, "tags", "", "Comma-separated tags")
	_ = addResourceCmd.RegisterFlagCompletionFunc("type", resourceTypeArgs)
	rootCmd.AddCommand(addResourceCmd)

	listResourcesCmd.Flags().StringVar(&listResourcesTag, "tag", "", "Only list resources with this tag")
	rootCmd.AddCommand(listResourcesCmd)

	rootCmd.AddCommand(openResourceCmd)
	rootCmd.AddCommand(deleteResourceCmd)
}

var addResourceCmd = &cobra.Command{
	Use:   "add-resource <name> <path>",
	Short: "Track a file, folder or URL",
	Long: `Track a file, folder or URL as a resource.

With --type auto (the default) the type is detected: URLs by scheme,
folders by stat, and files by content (video, image, document, archive,
otherwise file).

Examples:
  snapkit add-resource "Project notes" ~/notes.md
  snapkit add-resource Docs https://go.dev/doc/ --tags reference
  snapkit add-resource Photos ~/Pictures --type folder`,
	Args: cobra.ExactArgs(2),
	RunE: runAddResource,
}

func runAddResource(cmd *cobra.Command, args []string) error {
	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	item := &catalog.ResourceItem{Name: args[0], Path: args[1], Tags: addResourceTags}
	rtype, err := resolveResourceType(addResourceType, item.Path)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	item.Type = rtype
	logger.Debug("resource type", zap.String("path", item.Path), zap.String("type", string(rtype)))

	exitOnError(db.AddResource(item), "adding resource")

	if humanOutput {
		outputHuman("Added %s resource %d: %s\n", item.Type, item.ID, item.Name)
		return nil
	}
	return outputJSON(item)
}

// resolveResourceType validates the --type flag, detecting the type for "auto".
func resolveResourceType(flag, path string) (catalog.ResourceType, error) {
	if flag == "" || flag == autoType {
		return catalog.DetectResourceType(path), nil
	}
	return catalog.ParseResourceType(flag)
}

var listResourcesCmd = &cobra.Command{
	Use:   "list-resources",
	Short: "List tracked resources",
	Args:  cobra.NoArgs,
	RunE:  runListResources,
}

func runListResources(cmd *cobra.Command, args []string) error {
	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	items, err := db.ListResources(storage.ListFilter{Tag: listResourcesTag})
	exitOnError(err, "listing resources")
	if items == nil {
		items = []catalog.ResourceItem{}
	}

	if humanOutput {
		rows := make([][]string, len(items))
		for i, r := range items {
			rows[i] = []string{
				formatID(r.ID),
				truncateString(r.Name, NameMaxLen),
				string(r.Type),
				truncateString(r.Path, PathMaxLen),
				orDash(r.Tags),
			}
		}
		printTable([]string{"ID", "NAME", "TYPE", "PATH", "TAGS"}, rows, "resources")
		return nil
	}
	return outputJSON(items)
}

var openResourceCmd = &cobra.Command{
	Use:   "open-resource <id>",
	Short: "Open a resource with the system handler",
	Long: `Open a resource: URLs in the browser (or the configured browser
command), files and folders with the system handler.

Examples:
  snapkit open-resource 4`,
	Args: cobra.ExactArgs(1),
	RunE: runOpenResource,
}

func runOpenResource(cmd *cobra.Command, args []string) error {
	id := mustParseID(args[0], "resource")

	cfg, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	item, err := db.GetResource(id)
	exitOnError(err, "loading resource")
	if item == nil {
		exitWithError(ExitNotFound, "resource %d not found", id)
	}

	exitOnError(opener.New(cfg.Browser).Open(context.Background(), *item), "opening resource")
	logger.Debug("opened resource", zap.Int64("id", id), zap.String("path", item.Path))

	if humanOutput {
		outputHuman("Opened %s\n", item.Path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "opened", ID: id, Path: item.Path})
}

var deleteResourceCmd = &cobra.Command{
	Use:   "delete-resource <id>",
	Short: "Stop tracking a resource",
	Long: `Stop tracking a resource. The file, folder or page itself is untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteResource,
}

func runDeleteResource(cmd *cobra.Command, args []string) error {
	id := mustParseID(args[0], "resource")

	_, logger, db := mustSetup()
	defer db.Close()
	defer logger.Sync()

	exitOnError(db.DeleteResource(id), fmt.Sprintf("deleting resource %d", id))

	if humanOutput {
		outputHuman("Deleted resource %d\n", id)
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted", ID: id})
}
