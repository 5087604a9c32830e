package git

import (
	"context"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
)

// GoGitCloner clones in-process with go-git.
type GoGitCloner struct {
	depth    int
	progress io.Writer
	log      zerolog.Logger
}

// NewGoGitCloner creates a go-git backed cloner.
func NewGoGitCloner(depth int, log zerolog.Logger) *GoGitCloner {
	return &GoGitCloner{depth: depth, log: log}
}

// WithProgress sets a writer that receives the remote's sideband progress.
func (c *GoGitCloner) WithProgress(w io.Writer) *GoGitCloner { c.progress = w; return c }

// Clone fetches url into dir and checks out the default branch.
func (c *GoGitCloner) Clone(ctx context.Context, url, dir string) error {
	opts := &gogit.CloneOptions{URL: url, Progress: c.progress}
	if c.depth > 0 {
		opts.Depth = c.depth
	}

	c.log.Debug().Str("url", url).Str("dir", dir).Int("depth", c.depth).Msg("cloning repository")

	repo, err := gogit.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyCloneError(url, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		c.log.Debug().Str("url", url).Str("commit", ref.Hash().String()[:8]).Msg("repository cloned")
	}
	return nil
}
