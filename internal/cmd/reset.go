package cmd

import (
	"github.com/spf13/cobra"

	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/locale"
)

func newResetCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the recorded install state",
		Long: `Reset removes the install record so the next run starts over as a first
install. Use it when the state file is damaged. Project files and backups are
left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, s)
			if err != nil {
				return report(e, err, locale.Vars{})
			}

			store := e.store()
			if !store.Exists() {
				e.console.Info(e.catalog.Msg("resetNothing"))
				return nil
			}
			if err := store.Reset(); err != nil {
				return report(e, uerrors.New(uerrors.CodeStateWrite, "reset", err), locale.Vars{})
			}
			e.console.Success(e.catalog.Msg("resetDone"))
			return nil
		},
	}
}
