package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	uerrors "github.com/adamancini/updraft/internal/errors"
)

// DefaultFile is the state file path relative to the project directory.
const DefaultFile = ".updraft/state.json"

// FileStore reads and writes the install record as a JSON document.
type FileStore struct {
	Path string
	log  zerolog.Logger
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{Path: path, log: log}
}

// Load implements Store. A missing file yields the default record.
func (s *FileStore) Load() (State, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("path", s.Path).Msg("no state file, using defaults")
			return Default(), nil
		}
		return State{}, uerrors.New(uerrors.CodeStateRead, fmt.Sprintf("failed to read %s", s.Path), err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, uerrors.New(uerrors.CodeStateRead, fmt.Sprintf("failed to parse %s", s.Path), err)
	}

	s.log.Debug().
		Str("path", s.Path).
		Str("package", st.PackageName).
		Str("version", st.Version).
		Bool("initialized", st.Initialized).
		Bool("interrupted", st.Interrupted).
		Msg("loaded state")
	return st, nil
}

// Save implements Store. The record is staged in a sibling temp file and
// renamed over the target so a reader never sees a half-written document.
func (s *FileStore) Save(st State) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set state file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.log.Debug().
		Str("path", s.Path).
		Str("version", st.Version).
		Bool("initialized", st.Initialized).
		Bool("interrupted", st.Interrupted).
		Msg("saved state")
	return nil
}

// Exists reports whether the state file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Reset deletes the state file. A missing file is not an error.
func (s *FileStore) Reset() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
