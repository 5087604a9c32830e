package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/updraft/internal/locale"
	"github.com/adamancini/updraft/internal/output"
)

func newPackagesCmd(info buildInfo, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List installable packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, s)
			if err != nil {
				return report(e, err, locale.Vars{})
			}

			names, err := e.resolver(info.Version).ListPackages(cmd.Context())
			if err != nil {
				return report(e, err, locale.Vars{})
			}

			if len(names) == 0 && e.writer.Format() == output.FormatText {
				e.console.Info(e.catalog.Msg("noPackages"))
				return nil
			}
			if names == nil {
				names = []string{}
			}
			return e.writer.Write(names)
		},
	}
}
