// Package tree copies directory trees with overlay semantics: files that
// exist in the destination but not in the source are left alone.
package tree

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// SkipFunc reports whether the entry at rel (relative to the source root)
// should be left out. Returning true for a directory skips its whole subtree.
type SkipFunc func(rel string, d fs.DirEntry) bool

// Options configures Copy.
type Options struct {
	Skip SkipFunc
}

// Stats summarizes a completed copy.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

// Copy overlays the contents of src onto dst, creating dst if needed.
// Existing files with matching paths are replaced. The context is checked
// before every entry, so a cancelled copy stops between files.
func Copy(ctx context.Context, src, dst string, opts Options) (Stats, error) {
	var stats Stats

	info, err := os.Stat(src)
	if err != nil {
		return stats, fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return stats, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if opts.Skip != nil && opts.Skip(rel, d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			stats.Dirs++
		case d.Type()&fs.ModeSymlink != 0:
			if err := copySymlink(path, target); err != nil {
				return err
			}
			stats.Files++
		case d.Type().IsRegular():
			n, err := copyFile(path, target)
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += n
		default:
			// Sockets, devices and pipes are not part of a project tree.
		}
		return nil
	})

	return stats, err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", src, err)
	}

	// A symlink or other non-regular entry at dst is replaced, never written through.
	if existing, err := os.Lstat(dst); err == nil && !existing.Mode().IsRegular() {
		if err := os.Remove(dst); err != nil {
			return 0, fmt.Errorf("failed to replace %s: %w", dst, err)
		}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %w", dst, err)
	}

	// O_TRUNC keeps the old mode of a replaced file.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	return n, nil
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", src, err)
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	if err := os.Symlink(link, dst); err != nil {
		return fmt.Errorf("failed to create link %s: %w", dst, err)
	}
	return nil
}

// Empty removes everything inside dir, creating dir if it does not exist.
func Empty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0755)
		}
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
