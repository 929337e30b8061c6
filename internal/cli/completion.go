package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell.

  $ source <(jobtimeline completion bash)
  $ jobtimeline completion zsh > "${fpath[1]}/_jobtimeline"
  $ jobtimeline completion fish > ~/.config/fish/completions/jobtimeline.fish
  PS> jobtimeline completion powershell | Out-String | Invoke-Expression

Saved layout hashes complete for 'layouts show' and 'layouts rm'.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// completeLayoutHashes offers hashes from the local layout store, with the
// layout title as description.
func (c *CLI) completeLayoutHashes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	store, err := c.layoutStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()

	summaries, err := store.ListLayouts(cmd.Context(), 0)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	seen := make(map[string]bool, len(args))
	for _, a := range args {
		seen[a] = true
	}
	var out []string
	for _, s := range summaries {
		if seen[s.Hash] || !strings.HasPrefix(s.Hash, toComplete) {
			continue
		}
		out = append(out, s.Hash+"\t"+s.Title)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
