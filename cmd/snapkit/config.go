package main

import (
	"fmt"
	"strings"

	"github.com/snapkit/snapkit/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in the config file
($XDG_CONFIG_HOME/snapkit/config.yml).

Usage:
  snapkit config                          # Show all config
  snapkit config log-level                # Get specific value
  snapkit config log-level debug          # Set value
  snapkit config db-path ~/sync/snapkit.db
  snapkit config browser ""               # Clear value

Keys:
  db-path      Database path (default ~/.snapkit/snapkit.db)
  log-level    Diagnostics level: debug, info, warn, error
  restore-dir  Default directory for 'snapkit import' to restore files into
  browser      Command used to open URL resources (default: system browser)

Environment variables SNAPKIT_DB, SNAPKIT_LOG_LEVEL and SNAPKIT_RESTORE_DIR
override the file; --db overrides both.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config show commands.
type ConfigResponse struct {
	Path       string `json:"path"`
	DBPath     string `json:"db_path,omitempty"`
	LogLevel   string `json:"log_level,omitempty"`
	RestoreDir string `json:"restore_dir,omitempty"`
	Browser    string `json:"browser,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := config.ConfigPath()
	cfg, err := config.LoadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("# %s\n", path)
			for _, key := range config.Keys {
				value, _ := cfg.Get(key)
				fmt.Printf("%-12s %s\n", key+":", value)
			}
		} else {
			outputJSON(ConfigResponse{
				Path:       path,
				DBPath:     cfg.DBPath,
				LogLevel:   cfg.LogLevel,
				RestoreDir: cfg.RestoreDir,
				Browser:    cfg.Browser,
			})
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.SaveFile(path); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}
	config.ResetGlobalConfigCache()

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}
	return nil
}

// normalizeKey converts key formats (log-level, log_level, LOG-LEVEL) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
