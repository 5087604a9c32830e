package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/updraft/internal/types"
)

// Format represents the file format of a settings file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

// detectFormat determines the file format based on extension or content.
func detectFormat(path string, content []byte) Format {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}

	// Content sniffing for extensionless files
	return sniffFormat(content)
}

// sniffFormat attempts to detect format from content.
func sniffFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))

	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}

	// TOML has [sections] or key = value; YAML uses key: value.
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			return FormatTOML
		}
		// Whichever separator comes first wins, so URLs with ':' or
		// query strings with '=' in the value do not confuse detection.
		switch i := strings.IndexAny(line, ":="); {
		case i < 0:
			continue
		case line[i] == '=':
			return FormatTOML
		default:
			return FormatYAML
		}
	}

	return FormatUnknown
}

// rawSettings is an intermediate representation for parsing. Pointer
// fields distinguish "absent" from an explicit zero value.
type rawSettings struct {
	APIURL    *string `yaml:"api_url" toml:"api_url" json:"api_url"`
	Language  *string `yaml:"language" toml:"language" json:"language"`
	StateFile *string `yaml:"state_file" toml:"state_file" json:"state_file"`
	BackupDir *string `yaml:"backup_dir" toml:"backup_dir" json:"backup_dir"`
	TempDir   *string `yaml:"temp_dir" toml:"temp_dir" json:"temp_dir"`
	Timeout   any     `yaml:"timeout" toml:"timeout" json:"timeout"`
	Git       *rawGit `yaml:"git" toml:"git" json:"git"`
}

type rawGit struct {
	Backend *string `yaml:"backend" toml:"backend" json:"backend"`
	Depth   *int    `yaml:"depth" toml:"depth" json:"depth"`
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns in content.
func expandEnvVars(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		parts := envVarPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := os.Getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// parse decodes content and overlays the fields that are present onto s.
func parse(content []byte, format Format, s *Settings) error {
	content = expandEnvVars(content)

	var raw rawSettings

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return fmt.Errorf("YAML parse error: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(content, &raw); err != nil {
			return fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(content, &raw); err != nil {
			return fmt.Errorf("JSON parse error: %w", err)
		}
	default:
		return fmt.Errorf("unknown file format")
	}

	setString(&s.APIURL, raw.APIURL)
	setString(&s.Language, raw.Language)
	setString(&s.StateFile, raw.StateFile)
	setString(&s.BackupDir, raw.BackupDir)
	setString(&s.TempDir, raw.TempDir)

	if raw.Timeout != nil {
		d, err := timeoutValue(raw.Timeout)
		if err != nil {
			return ValidationError{Field: "timeout", Message: err.Error()}
		}
		s.Timeout = d
	}

	if raw.Git != nil {
		if raw.Git.Backend != nil {
			s.Git.Backend = types.GitBackend(*raw.Git.Backend)
		}
		if raw.Git.Depth != nil {
			s.Git.Depth = *raw.Git.Depth
		}
	}

	return nil
}

// timeoutValue converts a decoded timeout into a duration. Strings go
// through ParseDuration; whole numbers are seconds.
func timeoutValue(v any) (time.Duration, error) {
	switch t := v.(type) {
	case string:
		return ParseDuration(t)
	case int:
		return secondsDuration(int64(t))
	case int64:
		return secondsDuration(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("invalid duration %d", t)
		}
		return secondsDuration(int64(t))
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("invalid duration %v: seconds must be a whole number", t)
		}
		return secondsDuration(int64(t))
	default:
		return 0, fmt.Errorf("invalid duration %v", v)
	}
}

func secondsDuration(n int64) (time.Duration, error) {
	if n < 0 || n > int64(math.MaxInt64/int64(time.Second)) {
		return 0, fmt.Errorf("invalid duration %d", n)
	}
	return time.Duration(n) * time.Second, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ParseDuration accepts Go durations ("45s", "2m") and bare integers,
// which are read as seconds.
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, nil
	}
	return 0, fmt.Errorf("invalid duration %q", v)
}
