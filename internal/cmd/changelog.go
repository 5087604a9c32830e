package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancini/updraft/internal/changelog"
	"github.com/adamancini/updraft/internal/locale"
	"github.com/adamancini/updraft/internal/output"
	"github.com/adamancini/updraft/internal/types"
)

var (
	changelogFile  string
	changelogPlain bool
	changelogKind  string
)

func newChangelogCmd(info buildInfo, s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog [package]",
		Short: "Show the changelog of the latest release",
		Long: `Changelog fetches the release notes of a package's latest release and shows
them grouped as added, removed, fixed and notes.

Examples:
  updraft changelog mytool              # Notes of the latest mytool release
  updraft changelog --file NEWS.txt     # Render a local changelog
  cat NEWS.txt | updraft changelog -f - # Read the changelog from stdin
  updraft changelog mytool --kind fixed # Only the fixes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if changelogFile == "" && len(args) == 0 {
				return errors.New("a package name or --file is required")
			}
			if changelogFile != "" && len(args) == 1 {
				return errors.New("pass either a package name or --file, not both")
			}
			var kind types.ChangeKind
			if changelogKind != "" {
				k, err := types.ParseChangeKind(changelogKind)
				if err != nil {
					return err
				}
				kind = k
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runChangelog(cmd, info, s, name, kind)
		},
	}

	cmd.Flags().StringVarP(&changelogFile, "file", "f", "", "Read the changelog from a file (- for stdin)")
	cmd.Flags().BoolVar(&changelogPlain, "plain", false, "One entry per line with its marker instead of a table")
	cmd.Flags().StringVar(&changelogKind, "kind", "", "Only show entries of one kind: added, removed, fixed, note")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var kinds []string
		for _, k := range types.AllChangeKinds() {
			kinds = append(kinds, k.String())
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runChangelog(cmd *cobra.Command, info buildInfo, s streams, name string, kind types.ChangeKind) error {
	vars := locale.Vars{PackageName: name}

	e, err := loadEnv(cmd, s)
	if err != nil {
		return report(e, err, vars)
	}

	var text string
	if changelogFile != "" {
		text, err = readChangelog(changelogFile, s.in)
		if err != nil {
			return err
		}
	} else {
		latest, err := e.resolver(info.Version).Latest(cmd.Context(), name)
		if err != nil {
			return report(e, err, vars)
		}
		text = latest.News
		vars.Version = latest.Version
	}

	records := changelog.Parse(text)
	if kind != "" {
		records = changelog.Group(records, kind)
	}

	if e.writer.Format() != output.FormatText {
		if records == nil {
			records = []changelog.Record{}
		}
		return e.writer.Write(records)
	}

	if changelogPlain {
		_, err := io.WriteString(s.out, changelog.Plain(records))
		return err
	}
	if len(records) > 0 && vars.Version != "" {
		e.console.Info(e.catalog.Msgf("changelogTitle", vars))
	}
	return changelog.Render(s.out, records, e.catalog.ChangelogLabels())
}

func readChangelog(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read changelog from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read changelog: %w", err)
	}
	return string(data), nil
}
