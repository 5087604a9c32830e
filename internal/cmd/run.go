package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/git"
	"github.com/adamancini/updraft/internal/install"
	"github.com/adamancini/updraft/internal/interactive"
	"github.com/adamancini/updraft/internal/lifecycle"
	"github.com/adamancini/updraft/internal/locale"
	"github.com/adamancini/updraft/internal/output"
	"github.com/adamancini/updraft/internal/state"
	"github.com/adamancini/updraft/internal/types"
)

var assumeYes bool

func newRunCmd(info buildInfo, s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <package> <current-version>",
		Short: "Check for a new release and install it",
		Long: `Run checks the release service for the latest version of a package and walks
through the install or update interactively.

On the first run the release is downloaded into the project directory. Later
runs compare the installed version with the latest release and, when they
differ, show the changelog and offer to update. The current files are backed
up before an update. An interrupted download is offered again on the next run.

Examples:
  updraft run mytool 1.2.0              # Check and update interactively
  updraft run mytool 1.2.0 --yes        # Accept every prompt
  updraft run mytool 1.2.0 -o json      # Print the outcome as JSON`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext(cmd.Context())
			defer stop()
			return runUpdate(ctx, cmd, info, s, args[0], args[1])
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")

	return cmd
}

// interruptContext cancels on the first SIGINT or SIGTERM and then restores
// the default handlers, so a second signal ends the process even when a step
// is not watching the context.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// runResult is the structured form of a run.
type runResult struct {
	Package string        `json:"package" yaml:"package"`
	Outcome types.Outcome `json:"outcome" yaml:"outcome"`
	State   state.State   `json:"state" yaml:"state"`
}

func runUpdate(ctx context.Context, cmd *cobra.Command, info buildInfo, s streams, packageName, currentVersion string) error {
	vars := locale.Vars{PackageName: packageName, Version: currentVersion}

	e, err := loadEnv(cmd, s)
	if err != nil {
		return report(e, err, vars)
	}

	cloner, err := git.New(e.settings.Git.Backend, e.settings.Git.Depth, e.log)
	if err != nil {
		return report(e, err, vars)
	}
	switch c := cloner.(type) {
	case *git.GoGitCloner:
		if verbose {
			c.WithProgress(s.errOut)
		}
	case *git.CLICloner:
		if !c.GitAvailable(ctx) {
			return report(e, uerrors.New(uerrors.CodeConfiguration, "git backend \"cli\" selected but the git binary was not found", nil), vars)
		}
	}

	if f, ok := s.in.(*os.File); ok && f == os.Stdin && !interactive.IsTerminal() {
		e.log.Debug().Msg("stdin is not a terminal; answers are read from piped input")
	}

	store := e.store()
	installer := install.New(e.dir, e.settings.TempDir, e.backups(), cloner,
		lifecycle.Notifier(e.console, e.catalog), e.log)
	prompter := interactive.NewPrompterWithIO(s.in, e.console.Out()).
		WithText(promptText(e.catalog)).
		WithAssumeYes(assumeYes)

	controller := lifecycle.New(lifecycle.Deps{
		Resolver:  e.resolver(info.Version),
		Store:     store,
		Installer: installer,
		Prompter:  prompter,
		Console:   e.console,
		Catalog:   e.catalog,
		Log:       e.log,
	})

	outcome, err := controller.Execute(ctx, packageName, currentVersion)
	if err != nil {
		return report(e, err, vars)
	}

	e.log.Debug().Str("outcome", outcome.String()).Bool("changed", outcome.Changed()).Msg("run finished")

	if e.writer.Format() == output.FormatText {
		return nil
	}

	st, err := store.Load()
	if err != nil {
		return report(e, err, vars)
	}
	if st.PackageName != "" {
		packageName = st.PackageName
	}
	return e.writer.Write(runResult{Package: packageName, Outcome: outcome, State: st})
}
