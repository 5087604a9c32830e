// Package backup snapshots the project directory before an update overlays
// new release files onto it.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/tree"
)

// ManifestFile is written at the top of every snapshot.
const ManifestFile = ".updraft-backup.json"

// Backup describes a completed snapshot.
type Backup struct {
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Package   string    `json:"package,omitempty" yaml:"package,omitempty"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Files     int       `json:"files" yaml:"files"`
	Bytes     int64     `json:"bytes" yaml:"bytes"`
}

// Manager handles backup operations for a single project root.
type Manager struct {
	root     string
	dir      string
	excludes []string
	log      zerolog.Logger
	now      func() time.Time
}

// NewManager creates a backup manager that copies root into dir. Paths in
// excludes (and dir itself) are never copied.
func NewManager(root, dir string, excludes []string, log zerolog.Logger) *Manager {
	clean := make([]string, 0, len(excludes)+1)
	clean = append(clean, filepath.Clean(dir))
	for _, e := range excludes {
		if e != "" {
			clean = append(clean, filepath.Clean(e))
		}
	}
	return &Manager{
		root:     filepath.Clean(root),
		dir:      filepath.Clean(dir),
		excludes: clean,
		log:      log,
		now:      time.Now,
	}
}

// Dir returns the backup directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// Create empties the backup directory and copies the current project into
// it. The package and version are recorded in the manifest for reference.
func (m *Manager) Create(ctx context.Context, pkg, version string) (*Backup, error) {
	if err := tree.Empty(m.dir); err != nil {
		return nil, uerrors.New(uerrors.CodeBackup, "failed to prepare backup directory", err)
	}

	stats, err := tree.Copy(ctx, m.root, m.dir, tree.Options{Skip: m.skip})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, uerrors.New(uerrors.CodeBackup, "failed to copy project into backup", err)
	}

	b := &Backup{
		CreatedAt: m.now().UTC(),
		Package:   pkg,
		Version:   version,
		Files:     stats.Files,
		Bytes:     stats.Bytes,
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, uerrors.New(uerrors.CodeBackup, "failed to marshal backup manifest", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, ManifestFile), data, 0644); err != nil {
		return nil, uerrors.New(uerrors.CodeBackup, "failed to write backup manifest", err)
	}

	m.log.Debug().
		Str("dir", m.dir).
		Int("files", b.Files).
		Int64("bytes", b.Bytes).
		Msg("backup created")

	return b, nil
}

// Latest reads the manifest of the current snapshot. It returns nil with no
// error when no backup has been taken yet.
func (m *Manager) Latest() (*Backup, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup manifest: %w", err)
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse backup manifest: %w", err)
	}
	return &b, nil
}

func (m *Manager) skip(rel string, _ fs.DirEntry) bool {
	abs := filepath.Join(m.root, rel)
	for _, e := range m.excludes {
		if abs == e {
			return true
		}
	}
	return false
}
