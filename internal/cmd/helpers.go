package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/adamancini/updraft/internal/backup"
	"github.com/adamancini/updraft/internal/config"
	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/interactive"
	"github.com/adamancini/updraft/internal/locale"
	"github.com/adamancini/updraft/internal/logging"
	"github.com/adamancini/updraft/internal/output"
	"github.com/adamancini/updraft/internal/release"
	"github.com/adamancini/updraft/internal/state"
)

// env is everything a subcommand needs after flags, environment and the
// settings file have been layered.
type env struct {
	dir      string
	settings *config.Settings
	log      zerolog.Logger
	console  *output.Console
	catalog  *locale.Catalog
	writer   *output.Writer
}

// loadEnv resolves the runtime environment for cmd. The returned env is never
// nil: on a configuration error it still carries a console and a catalog so
// the failure can be reported in the user's language.
func loadEnv(cmd *cobra.Command, s streams) (*env, error) {
	e := &env{log: logging.New(s.errOut, verbose, quiet)}

	format, formatErr := output.ParseFormat(outputFormat)
	if formatErr != nil {
		format = output.FormatText
	}
	e.writer = output.NewWriter(s.out, format)

	// Keep stdout machine-readable when a structured format was requested.
	consoleOut := s.out
	if format != output.FormatText {
		consoleOut = s.errOut
	}
	e.console = output.NewConsole(consoleOut, s.errOut, quiet)
	e.catalog = fallbackCatalog()

	if formatErr != nil {
		return e, uerrors.New(uerrors.CodeConfiguration, "invalid --output", formatErr)
	}

	dir, err := resolveProjectDir(projectDir)
	if err != nil {
		return e, uerrors.New(uerrors.CodeConfiguration, "invalid project directory", err)
	}
	e.dir = dir

	path, err := config.Find(configPath, dir)
	if err != nil {
		return e, uerrors.New(uerrors.CodeConfiguration, "settings file", err)
	}
	settings, err := config.Load(path)
	if err != nil {
		return e, uerrors.New(uerrors.CodeConfiguration, "settings file", err)
	}
	settings.ApplyEnv(os.Getenv)

	// Explicitly set flags win over the file and the environment.
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "api-url":
			settings.APIURL = apiURL
		case "lang":
			settings.Language = language
		}
	})

	settings.Resolve(dir, os.Getenv)
	if err := config.Validate(settings, dir); err != nil {
		return e, uerrors.New(uerrors.CodeConfiguration, "invalid settings", err)
	}
	e.settings = settings

	catalog, err := locale.Load(settings.Language)
	if err != nil {
		return e, uerrors.New(uerrors.CodeConfiguration, "message catalog", err)
	}
	e.catalog = catalog

	e.log.Debug().
		Str("dir", dir).
		Str("settings", settings.Path).
		Str("api_url", settings.APIURL).
		Str("language", catalog.Lang).
		Str("state_file", settings.StateFile).
		Msg("environment loaded")

	return e, nil
}

func resolveProjectDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// fallbackCatalog picks a catalog without the settings file, for reporting
// errors that happen before the settings are known.
func fallbackCatalog() *locale.Catalog {
	pref := language
	for _, key := range []string{config.EnvLanguage, "LC_ALL", "LC_MESSAGES", "LANG"} {
		if pref != "" {
			break
		}
		pref = os.Getenv(key)
	}
	c, err := locale.Load(pref)
	if err != nil {
		// The English catalog is embedded; this only fails on a broken build.
		panic(err)
	}
	return c
}

func (e *env) store() *state.FileStore {
	return state.NewFileStore(e.settings.StateFile, e.log)
}

func (e *env) resolver(version string) *release.Resolver {
	return release.NewResolver(e.settings.APIURL,
		release.WithTimeout(e.settings.Timeout),
		release.WithUserAgent("updraft/"+version),
		release.WithLogger(e.log),
	)
}

// backups returns a manager that never copies updater bookkeeping: the temp
// clone, the state file and the directory holding it.
func (e *env) backups() *backup.Manager {
	excludes := []string{e.settings.TempDir, e.settings.StateFile}
	if stateDir := filepath.Dir(e.settings.StateFile); stateDir != e.dir {
		excludes = append(excludes, stateDir)
	}
	return backup.NewManager(e.dir, e.settings.BackupDir, excludes, e.log)
}

func promptText(c *locale.Catalog) interactive.Text {
	return interactive.Text{
		YesDefault: c.Msg("promptYesDefault"),
		NoDefault:  c.Msg("promptNoDefault"),
		Invalid:    c.Msg("promptInvalid"),
		Choose:     c.Msg("promptChoose"),
	}
}

// errorKeys maps error codes to errors.yaml catalog keys.
var errorKeys = map[uerrors.Code]string{
	uerrors.CodeResolution:          "apiError",
	uerrors.CodeUnrecognizedPackage: "packageError",
	uerrors.CodeBackup:              "backupError",
	uerrors.CodeDownload:            "downloadError",
	uerrors.CodeCancelled:           "userCancelled",
	uerrors.CodeStateRead:           "stateError",
	uerrors.CodeStateWrite:          "stateWriteError",
	uerrors.CodeConfiguration:       "configError",
}

// report prints the localized message for err and returns ErrReported.
func report(e *env, err error, vars locale.Vars) error {
	code := uerrors.CodeOf(err)
	key, ok := errorKeys[code]
	if !ok {
		key = "unknownError"
	}

	e.log.Debug().Err(err).Str("code", string(code)).Msg("command failed")

	msg := e.catalog.Errf(key, vars)
	if code == uerrors.CodeCancelled {
		e.console.Error(msg, nil)
	} else {
		e.console.Error(msg, err)
	}
	return ErrReported
}
