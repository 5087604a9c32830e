// Package config handles settings file parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamancini/updraft/internal/types"
)

// Defaults for every setting.
const (
	DefaultAPIURL    = "https://api.omenlist.xyz/version/check"
	DefaultLanguage  = "en"
	DefaultStateFile = ".updraft/state.json"
	DefaultBackupDir = "backup"
	DefaultTempDir   = "temp-download"
	DefaultTimeout   = 30 * time.Second
	DefaultGitDepth  = 1
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig    = "UPDRAFT_CONFIG"
	EnvAPIURL    = "UPDRAFT_API_URL"
	EnvLanguage  = "UPDRAFT_LANG"
	EnvStateFile = "UPDRAFT_STATE_FILE"
)

// GitSettings controls how releases are cloned.
type GitSettings struct {
	Backend types.GitBackend `yaml:"backend" toml:"backend" json:"backend"`
	Depth   int              `yaml:"depth" toml:"depth" json:"depth"`
}

// Settings is the resolved updater configuration.
type Settings struct {
	APIURL    string        `yaml:"api_url" toml:"api_url" json:"api_url"`
	Language  string        `yaml:"language" toml:"language" json:"language"`
	StateFile string        `yaml:"state_file" toml:"state_file" json:"state_file"`
	BackupDir string        `yaml:"backup_dir" toml:"backup_dir" json:"backup_dir"`
	TempDir   string        `yaml:"temp_dir" toml:"temp_dir" json:"temp_dir"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	Git       GitSettings   `yaml:"git" toml:"git" json:"git"`

	// Path is the settings file the values were read from, if any.
	Path string `yaml:"-" toml:"-" json:"-"`
}

// Defaults returns settings with every field at its default. Language is
// left empty so Resolve can fall back to the environment locale.
func Defaults() *Settings {
	return &Settings{
		APIURL:    DefaultAPIURL,
		StateFile: DefaultStateFile,
		BackupDir: DefaultBackupDir,
		TempDir:   DefaultTempDir,
		Timeout:   DefaultTimeout,
		Git: GitSettings{
			Backend: types.GitBackendGoGit,
			Depth:   DefaultGitDepth,
		},
	}
}

// fileNames are tried in order within each search directory.
var fileNames = []string{
	"updraft.yaml",
	"updraft.yml",
	"updraft.toml",
	"updraft.json",
	".updraft.yaml",
	".updraft.yml",
	".updraft.toml",
	".updraft.json",
}

// Find searches for a settings file. It returns "" with no error when no
// file exists; settings files are optional.
func Find(explicitPath, projectDir string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified settings file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("settings file from %s not found: %s", EnvConfig, envPath)
		}
		return envPath, nil
	}

	for _, name := range fileNames {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		if home, err := os.UserHomeDir(); err == nil {
			xdgConfig = filepath.Join(home, ".config")
		}
	}
	if xdgConfig != "" {
		for _, ext := range []string{"yaml", "yml", "toml", "json"} {
			path := filepath.Join(xdgConfig, "updraft", "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", nil
}

// Load reads a settings file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	if err := parse(content, format, s); err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// ApplyEnv overrides settings from UPDRAFT_* environment variables.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		s.APIURL = v
	}
	if v := getenv(EnvLanguage); v != "" {
		s.Language = v
	}
	if v := getenv(EnvStateFile); v != "" {
		s.StateFile = v
	}
}

// Resolve fills the language from the process locale when unset and makes
// relative paths absolute against projectDir.
func (s *Settings) Resolve(projectDir string, getenv func(string) string) {
	if s.Language == "" {
		for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
			if v := getenv(key); v != "" {
				s.Language = v
				break
			}
		}
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}

	s.StateFile = resolvePath(projectDir, s.StateFile)
	s.BackupDir = resolvePath(projectDir, s.BackupDir)
	s.TempDir = resolvePath(projectDir, s.TempDir)
}

func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
