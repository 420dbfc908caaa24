package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for speakerbox.

To load completions:

Bash:
  $ source <(speakerbox completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ speakerbox completion bash > /etc/bash_completion.d/speakerbox
  # macOS:
  $ speakerbox completion bash > $(brew --prefix)/etc/bash_completion.d/speakerbox

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ speakerbox completion zsh > "${fpath[1]}/_speakerbox"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ speakerbox completion fish | source

  # To load completions for each session, execute once:
  $ speakerbox completion fish > ~/.config/fish/completions/speakerbox.fish

PowerShell:
  PS> speakerbox completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> speakerbox completion powershell > speakerbox.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeFormats suggests values for --format.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return pipeline.ValidFormats, cobra.ShellCompDirectiveNoFileComp
}

// completeTopologies suggests values for --type.
func completeTopologies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(enclosure.Topologies))
	for i, t := range enclosure.Topologies {
		out[i] = t.String()
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
