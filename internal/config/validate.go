package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks resolved settings. Paths must already be absolute (see
// Resolve); projectDir is the directory they must live under.
func Validate(s *Settings, projectDir string) error {
	var errors []string

	if err := validateAPIURL(s.APIURL); err != nil {
		errors = append(errors, err.Error())
	}

	if s.Timeout <= 0 {
		errors = append(errors, ValidationError{Field: "timeout", Message: "must be positive"}.Error())
	}

	if err := s.Git.Backend.Validate(); err != nil {
		errors = append(errors, ValidationError{Field: "git.backend", Message: err.Error()}.Error())
	}
	if s.Git.Depth < 0 {
		errors = append(errors, ValidationError{Field: "git.depth", Message: "must be zero (full history) or positive"}.Error())
	}

	if s.StateFile == "" {
		errors = append(errors, ValidationError{Field: "state_file", Message: "is required"}.Error())
	}

	for _, d := range []struct{ field, path string }{
		{"backup_dir", s.BackupDir},
		{"temp_dir", s.TempDir},
	} {
		if err := validateProjectDir(d.field, d.path, projectDir); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if s.BackupDir != "" && s.BackupDir == s.TempDir {
		errors = append(errors, ValidationError{Field: "temp_dir", Message: "must differ from backup_dir"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateAPIURL(raw string) error {
	if raw == "" {
		return ValidationError{Field: "api_url", Message: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ValidationError{Field: "api_url", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "api_url", Message: fmt.Sprintf("scheme %q is not http or https", u.Scheme)}
	}
	if u.Host == "" {
		return ValidationError{Field: "api_url", Message: "host is required"}
	}
	return nil
}

// validateProjectDir rejects directories that are empty, equal to the
// project root, or outside it. Both are wiped during an install.
func validateProjectDir(field, path, projectDir string) error {
	if path == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	rel, err := filepath.Rel(projectDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be a subdirectory of the project", path)}
	}
	return nil
}
