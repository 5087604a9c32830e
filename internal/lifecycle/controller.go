package lifecycle

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adamancini/updraft/internal/changelog"
	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/install"
	"github.com/adamancini/updraft/internal/interactive"
	"github.com/adamancini/updraft/internal/locale"
	"github.com/adamancini/updraft/internal/release"
	"github.com/adamancini/updraft/internal/state"
	"github.com/adamancini/updraft/internal/types"
)

// Resolver looks up installable packages and their latest release.
type Resolver interface {
	ListPackages(ctx context.Context) ([]string, error)
	Latest(ctx context.Context, name string) (*release.Info, error)
}

// Installer performs the backup, clone and overlay for a release.
type Installer interface {
	Install(ctx context.Context, req install.Request) error
}

// Prompter asks the user questions.
type Prompter interface {
	Confirm(ctx context.Context, question string, def bool) (bool, error)
	Select(ctx context.Context, question string, choices []string) (string, error)
}

// Console prints localized messages.
type Console interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Out() io.Writer
}

// Controller runs the update state machine.
type Controller struct {
	resolver  Resolver
	store     state.Store
	installer Installer
	prompter  Prompter
	console   Console
	catalog   *locale.Catalog
	log       zerolog.Logger
}

// Deps groups the collaborators of a Controller.
type Deps struct {
	Resolver  Resolver
	Store     state.Store
	Installer Installer
	Prompter  Prompter
	Console   Console
	Catalog   *locale.Catalog
	Log       zerolog.Logger
}

// New creates a Controller.
func New(d Deps) *Controller {
	return &Controller{
		resolver:  d.Resolver,
		store:     d.Store,
		installer: d.Installer,
		prompter:  d.Prompter,
		console:   d.Console,
		catalog:   d.Catalog,
		log:       d.Log,
	}
}

// RunContext is the settled input of a run. It is built once by Prepare and
// never modified afterwards.
type RunContext struct {
	PackageName    string
	CurrentVersion string
	Packages       []string
	State          state.State
}

// InstalledVersion is the version the project is considered to be on: the
// persisted version once an install of this package has completed, else the
// version the caller reported.
func (rc RunContext) InstalledVersion() string {
	samePackage := rc.State.PackageName == "" || rc.State.PackageName == rc.PackageName
	if rc.State.Initialized && rc.State.Version != "" && samePackage {
		return rc.State.Version
	}
	return rc.CurrentVersion
}

// Decide picks the branch for a run. Interruption is checked before
// initialization because an interrupted first install is not initialized.
func Decide(st state.State, installedVersion, latestVersion string) types.Decision {
	if st.Interrupted {
		return types.DecisionResume
	}
	return decideFresh(st, installedVersion, latestVersion)
}

func decideFresh(st state.State, installedVersion, latestVersion string) types.Decision {
	switch {
	case !st.Initialized:
		return types.DecisionFirstInstall
	case installedVersion == latestVersion:
		return types.DecisionUpToDate
	default:
		return types.DecisionUpdateAvailable
	}
}

// Execute prepares and runs one update.
func (c *Controller) Execute(ctx context.Context, packageName, currentVersion string) (types.Outcome, error) {
	rc, err := c.Prepare(ctx, packageName, currentVersion)
	if err != nil {
		return "", err
	}
	return c.Run(ctx, rc)
}

// Prepare loads the persisted record and settles the package identity. When
// packageName is not installable the user picks one from the listing.
func (c *Controller) Prepare(ctx context.Context, packageName, currentVersion string) (RunContext, error) {
	st, err := c.store.Load()
	if err != nil {
		return RunContext{}, err
	}

	rc := RunContext{
		PackageName:    packageName,
		CurrentVersion: currentVersion,
		State:          st,
	}

	packages, err := c.resolver.ListPackages(ctx)
	if err != nil {
		return rc, c.fail(ctx, rc, err)
	}
	rc.Packages = packages

	if slices.Contains(packages, packageName) {
		return rc, nil
	}

	c.log.Debug().Str("package", packageName).Strs("available", packages).Msg("package not recognized")

	if len(packages) == 0 {
		return rc, uerrors.New(uerrors.CodeUnrecognizedPackage, "no installable packages", nil)
	}

	vars := locale.Vars{PackageName: packageName, Version: currentVersion}
	selected, err := c.prompter.Select(ctx, c.catalog.Msgf("selectPackage", vars), packages)
	if err != nil {
		return rc, c.fail(ctx, rc, uerrors.New(uerrors.CodeUnrecognizedPackage, "package "+packageName+" is not installable", err))
	}

	rc.PackageName = selected
	return rc, nil
}

// Run resolves the latest release and executes the chosen branch.
func (c *Controller) Run(ctx context.Context, rc RunContext) (types.Outcome, error) {
	latest, err := c.resolver.Latest(ctx, rc.PackageName)
	if err != nil {
		return "", c.fail(ctx, rc, err)
	}

	installed := rc.InstalledVersion()
	vars := locale.Vars{PackageName: rc.PackageName, Version: latest.Version, URL: latest.URL}
	decision := Decide(rc.State, installed, latest.Version)

	c.log.Debug().
		Str("package", rc.PackageName).
		Str("installed", installed).
		Str("latest", latest.Version).
		Str("decision", decision.String()).
		Msg("update decision")

	if decision == types.DecisionResume {
		c.console.Warn(c.catalog.Errf("resumeDownload", vars))
		ok, err := c.confirm(ctx, c.catalog.Errf("resumePrompt", vars), true)
		if err != nil {
			return "", c.fail(ctx, rc, err)
		}
		if ok {
			if err := c.install(ctx, rc, latest, false); err != nil {
				return "", err
			}
			c.console.Success(c.catalog.Msgf("resumeSuccess", vars))
			return types.OutcomeResumed, nil
		}
		// A declined resume continues with the regular checks; the record
		// stays interrupted until an install completes.
		decision = decideFresh(rc.State, installed, latest.Version)
	}

	switch decision {
	case types.DecisionFirstInstall:
		question := strings.Join([]string{
			c.catalog.Msgf("welcome", vars),
			c.catalog.Msgf("noFiles", vars),
			c.catalog.Msgf("downloadPrompt", vars),
		}, "\n")
		ok, err := c.confirm(ctx, question, true)
		if err != nil {
			return "", c.fail(ctx, rc, err)
		}
		if !ok {
			c.console.Warn(c.catalog.Errf("firstTimeCancel", vars))
			return types.OutcomeDeclined, nil
		}
		if err := c.install(ctx, rc, latest, false); err != nil {
			return "", err
		}
		c.console.Success(c.catalog.Msgf("downloadSuccess", vars))
		return types.OutcomeInstalled, nil

	case types.DecisionUpToDate:
		c.console.Success(c.catalog.Msgf("updated", vars))
		return types.OutcomeUpToDate, nil

	default:
		c.console.Info(c.catalog.Msgf("newVersionAvailable", vars))
		if records := changelog.Parse(latest.News); len(records) > 0 {
			c.console.Info(c.catalog.Msgf("changelogTitle", vars))
			if err := changelog.Render(c.console.Out(), records, c.catalog.ChangelogLabels()); err != nil {
				c.log.Warn().Err(err).Msg("failed to render changelog")
			}
		}

		ok, err := c.confirm(ctx, c.catalog.Msgf("updatePrompt", vars), false)
		if err != nil {
			return "", c.fail(ctx, rc, err)
		}
		if !ok {
			c.console.Warn(c.catalog.Errf("updateCancel", locale.Vars{PackageName: rc.PackageName, Version: installed}))
			return types.OutcomeDeclined, nil
		}
		if err := c.install(ctx, rc, latest, true); err != nil {
			return "", err
		}
		c.console.Success(c.catalog.Msgf("updateSuccess", vars))
		return types.OutcomeUpdated, nil
	}
}

// confirm asks a question. A closed input counts as declining; any other
// failure is a cancellation.
func (c *Controller) confirm(ctx context.Context, question string, def bool) (bool, error) {
	ok, err := c.prompter.Confirm(ctx, question, def)
	if errors.Is(err, interactive.ErrInputClosed) {
		c.log.Debug().Msg("input closed, treating as decline")
		return false, nil
	}
	return ok, err
}

// install runs the installer and persists the outcome. Backup failures leave
// the record untouched; download failures mark it interrupted.
func (c *Controller) install(ctx context.Context, rc RunContext, latest *release.Info, withBackup bool) error {
	err := c.installer.Install(ctx, install.Request{
		URL:             latest.URL,
		Package:         rc.PackageName,
		PreviousVersion: rc.InstalledVersion(),
		Backup:          withBackup,
	})
	if err != nil {
		if ctx.Err() != nil {
			return c.cancelled(ctx, rc)
		}
		if uerrors.IsCode(err, uerrors.CodeBackup) {
			return err
		}
		if serr := c.store.Save(interruptedState(rc)); serr != nil {
			c.log.Error().Err(serr).Msg("failed to record interrupted install")
			return errors.Join(err, uerrors.New(uerrors.CodeStateWrite, "failed to save state", serr))
		}
		return err
	}

	if err := c.store.Save(state.State{
		PackageName: rc.PackageName,
		Version:     latest.Version,
		Initialized: true,
		Interrupted: false,
	}); err != nil {
		return uerrors.New(uerrors.CodeStateWrite, "failed to save state", err)
	}
	return nil
}

// fail returns err unless the run was cancelled, in which case the
// interruption is recorded instead.
func (c *Controller) fail(ctx context.Context, rc RunContext, err error) error {
	if ctx.Err() != nil {
		return c.cancelled(ctx, rc)
	}
	return err
}

// cancelled records the run as interrupted and returns the cancellation error.
func (c *Controller) cancelled(ctx context.Context, rc RunContext) error {
	cause := ctx.Err()
	if serr := c.store.Save(interruptedState(rc)); serr != nil {
		c.log.Error().Err(serr).Msg("failed to record interruption")
		return uerrors.New(uerrors.CodeCancelled, "operation cancelled", errors.Join(cause, serr))
	}
	return uerrors.New(uerrors.CodeCancelled, "operation cancelled", cause)
}

func interruptedState(rc RunContext) state.State {
	return state.State{
		PackageName: rc.PackageName,
		Version:     rc.InstalledVersion(),
		Initialized: rc.State.Initialized,
		Interrupted: true,
	}
}

// Notifier maps installer progress to console messages.
func Notifier(console Console, catalog *locale.Catalog) install.Notifier {
	return func(step install.Step, req install.Request) {
		vars := locale.Vars{PackageName: req.Package, URL: req.URL}
		switch step {
		case install.StepBackupStarted:
			console.Info(catalog.Msgf("creatingBackup", vars))
		case install.StepBackupCompleted:
			console.Success(catalog.Msgf("backupSuccess", vars))
		case install.StepDownloadStarted:
			console.Info(catalog.Msgf("downloading", vars))
		}
	}
}
