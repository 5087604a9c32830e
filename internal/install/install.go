// Package install downloads a release into a scratch directory and overlays
// it onto the project root.
package install

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/adamancini/updraft/internal/backup"
	uerrors "github.com/adamancini/updraft/internal/errors"
	"github.com/adamancini/updraft/internal/git"
	"github.com/adamancini/updraft/internal/tree"
)

// Step identifies a point of progress reported to the Notifier.
type Step string

const (
	StepBackupStarted   Step = "backup_started"
	StepBackupCompleted Step = "backup_completed"
	StepDownloadStarted Step = "download_started"
	StepCompleted       Step = "completed"
)

// Notifier receives progress steps for req. It may be nil.
type Notifier func(step Step, req Request)

// Backuper snapshots the project before it is overwritten.
type Backuper interface {
	Create(ctx context.Context, pkg, version string) (*backup.Backup, error)
}

// Request describes one install.
type Request struct {
	URL     string
	Package string
	// PreviousVersion is recorded in the backup manifest.
	PreviousVersion string
	Backup          bool
}

// Installer performs backup, clone and overlay for a project root.
type Installer struct {
	root    string
	tempDir string
	backups Backuper
	cloner  git.Cloner
	notify  Notifier
	log     zerolog.Logger
}

// New creates an Installer. tempDir is wiped before every clone.
func New(root, tempDir string, backups Backuper, cloner git.Cloner, notify Notifier, log zerolog.Logger) *Installer {
	return &Installer{
		root:    root,
		tempDir: tempDir,
		backups: backups,
		cloner:  cloner,
		notify:  notify,
		log:     log,
	}
}

// Install runs the install pipeline. Backup failures are tagged
// CodeBackup, everything after is tagged CodeDownload. If ctx is cancelled
// the context error is returned untagged.
func (i *Installer) Install(ctx context.Context, req Request) error {
	if req.Backup {
		i.step(StepBackupStarted, req)
		if _, err := i.backups.Create(ctx, req.Package, req.PreviousVersion); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		i.step(StepBackupCompleted, req)
	}

	i.step(StepDownloadStarted, req)
	if err := i.download(ctx, req.URL); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return uerrors.New(uerrors.CodeDownload, fmt.Sprintf("failed to install %s", req.URL), err)
	}

	i.step(StepCompleted, req)
	return nil
}

func (i *Installer) download(ctx context.Context, url string) (err error) {
	if err := os.RemoveAll(i.tempDir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", i.tempDir, err)
	}
	defer func() {
		// The scratch clone is removed on both paths; a cleanup failure
		// only surfaces if nothing else went wrong.
		if rerr := os.RemoveAll(i.tempDir); rerr != nil && err == nil {
			err = fmt.Errorf("failed to remove %s: %w", i.tempDir, rerr)
		}
	}()

	if err := i.cloner.Clone(ctx, url, i.tempDir); err != nil {
		return err
	}

	stats, err := tree.Copy(ctx, i.tempDir, i.root, tree.Options{Skip: skipGitDir})
	if err != nil {
		return fmt.Errorf("failed to copy release into project: %w", err)
	}

	i.log.Debug().
		Str("url", url).
		Int("files", stats.Files).
		Int64("bytes", stats.Bytes).
		Msg("release overlaid onto project")
	return nil
}

func (i *Installer) step(s Step, req Request) {
	if i.notify != nil {
		i.notify(s, req)
	}
}

func skipGitDir(rel string, d fs.DirEntry) bool {
	return rel == ".git"
}
