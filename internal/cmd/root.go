package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancini/updraft/internal/locale"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	projectDir   string
	language     string
	apiURL       string
	verbose      bool
	quiet        bool
)

// ErrReported is returned after a localized error message has already been
// printed; main exits non-zero without printing it again.
var ErrReported = errors.New("error already reported")

// buildInfo is set once by Execute.
type buildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// streams are the process I/O, replaced in tests.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(buildInfo{Version: version, Commit: commit, Date: date}, streams{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	})
	return rootCmd.Execute()
}

func newRootCmd(info buildInfo, s streams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "updraft",
		Short: "Keep a project directory on the latest release of its package",
		Long: `updraft checks the release service for the latest version of a package and,
once you confirm, clones that release into the project directory.

Existing files are backed up before an update, files you added are never
removed, and an interrupted download is offered again on the next run.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.errOut)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings file")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "Message language, e.g. en or es (default: from environment)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Release service endpoint")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(newRunCmd(info, s))
	rootCmd.AddCommand(newStatusCmd(info, s))
	rootCmd.AddCommand(newPackagesCmd(info, s))
	rootCmd.AddCommand(newChangelogCmd(info, s))
	rootCmd.AddCommand(newResetCmd(s))
	rootCmd.AddCommand(newVersionCmd(info, s))
	rootCmd.AddCommand(newCompletionCmd(s))

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("lang", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return locale.Languages(), cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}
