package main

import (
	"os"

	"github.com/snapkit/snapkit/internal/catalog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(completionCmd)

	tagCmd.ValidArgsFunction = kindArgs
	copyCmd.ValidArgsFunction = kindArgs
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate completion scripts for your shell.

Bash:
  $ source <(snapkit completion bash)

Zsh:
  $ snapkit completion zsh > "${fpath[1]}/_snapkit"

Fish:
  $ snapkit completion fish > ~/.config/fish/completions/snapkit.fish

PowerShell:
  PS> snapkit completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> snapkit completion powershell > snapkit.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		default:
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

// kindArgs completes the <kind> argument of tag and copy.
func kindArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	kinds := make([]string, len(catalog.ValidKinds))
	for i, k := range catalog.ValidKinds {
		kinds[i] = string(k)
	}
	return kinds, cobra.ShellCompDirectiveNoFileComp
}

// resourceTypeArgs completes the --type flag of add-resource.
func resourceTypeArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	types := []string{autoType}
	for _, t := range catalog.ValidResourceTypes {
		types = append(types, string(t))
	}
	return types, cobra.ShellCompDirectiveNoFileComp
}
