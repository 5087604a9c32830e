package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamancini/updraft/internal/backup"
	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/lifecycle"
	"github.com/adamancini/updraft/internal/locale"
	"github.com/adamancini/updraft/internal/state"
	"github.com/adamancini/updraft/internal/types"
)

var statusCheck bool

func newStatusCmd(info buildInfo, s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [package]",
		Short: "Show the recorded install state",
		Long: `Status shows the install record kept in the project directory and the most
recent backup.

With --check the release service is queried and the decision the next run
would take is shown. The package defaults to the recorded one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runStatus(cmd, info, s, name)
		},
	}

	cmd.Flags().BoolVar(&statusCheck, "check", false, "Query the release service for the latest version")

	return cmd
}

// statusView is the status report. It renders as aligned text or as a
// structured document.
type statusView struct {
	StateFile string         `json:"state_file" yaml:"state_file"`
	Recorded  bool           `json:"recorded" yaml:"recorded"`
	State     state.State    `json:"state" yaml:"state"`
	Backup    *backup.Backup `json:"backup,omitempty" yaml:"backup,omitempty"`
	Latest    string         `json:"latest,omitempty" yaml:"latest,omitempty"`
	Decision  types.Decision `json:"decision,omitempty" yaml:"decision,omitempty"`

	empty string
}

func (v statusView) WriteText(w io.Writer) error {
	if !v.Recorded && v.Backup == nil && v.Latest == "" {
		_, err := fmt.Fprintln(w, v.empty)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "State file:\t%s\n", v.StateFile)
	if v.Recorded {
		fmt.Fprintf(tw, "Package:\t%s\n", orNone(v.State.PackageName))
		fmt.Fprintf(tw, "Version:\t%s\n", orNone(v.State.Version))
		fmt.Fprintf(tw, "Initialized:\t%t\n", v.State.Initialized)
		fmt.Fprintf(tw, "Interrupted:\t%t\n", v.State.Interrupted)
	}
	if v.Backup != nil {
		fmt.Fprintf(tw, "Last backup:\t%s (%d files)\n", v.Backup.CreatedAt.Format(time.RFC3339), v.Backup.Files)
	}
	if v.Latest != "" {
		fmt.Fprintf(tw, "Latest:\t%s\n", v.Latest)
		next := v.Decision.String()
		if v.Decision.RequiresInstall() {
			next += " (download offered)"
		}
		fmt.Fprintf(tw, "Next run:\t%s\n", next)
	}
	return tw.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func runStatus(cmd *cobra.Command, info buildInfo, s streams, name string) error {
	e, err := loadEnv(cmd, s)
	if err != nil {
		return report(e, err, locale.Vars{PackageName: name})
	}

	store := e.store()
	st, err := store.Load()
	if err != nil {
		return report(e, err, locale.Vars{PackageName: name})
	}

	view := statusView{
		StateFile: e.settings.StateFile,
		Recorded:  store.Exists(),
		State:     st,
		empty:     e.catalog.Msg("statusEmpty"),
	}

	latestBackup, err := e.backups().Latest()
	if err != nil {
		// A damaged manifest does not hide the rest of the report.
		e.log.Warn().Err(err).Msg("failed to read backup manifest")
	}
	view.Backup = latestBackup

	if statusCheck {
		if name == "" {
			name = st.PackageName
		}
		vars := locale.Vars{PackageName: name}
		if name == "" {
			return report(e, uerrors.New(uerrors.CodeUnrecognizedPackage, "no package recorded; pass a package name", nil), vars)
		}
		latest, err := e.resolver(info.Version).Latest(cmd.Context(), name)
		if err != nil {
			return report(e, err, vars)
		}
		rc := lifecycle.RunContext{PackageName: name, State: st}
		view.Latest = latest.Version
		view.Decision = lifecycle.Decide(st, rc.InstalledVersion(), latest.Version)
	}

	return e.writer.Write(view)
}
