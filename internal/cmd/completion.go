package cmd

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for updraft.

To load completions:

Bash:
  $ source <(updraft completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ updraft completion bash > /etc/bash_completion.d/updraft
  # macOS:
  $ updraft completion bash > $(brew --prefix)/etc/bash_completion.d/updraft

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ updraft completion zsh > "${fpath[1]}/_updraft"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ updraft completion fish > ~/.config/fish/completions/updraft.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(s.out)
			case "zsh":
				return cmd.Root().GenZshCompletion(s.out)
			case "fish":
				return cmd.Root().GenFishCompletion(s.out, true)
			}
			return nil
		},
	}
}
