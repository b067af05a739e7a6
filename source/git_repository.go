package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/sirupsen/logrus"
)

// GitRepository reads the configuration document from a file inside a git
// repository. The repository is cloned into memory on the first refresh
// and pulled afterwards.
type GitRepository struct {
	snapshot
	Name   string          // Name of the configuration source
	URL    *url.URL        // URL of the git repository
	Path   string          // Path to the YAML file within the repository
	Branch string          // Branch to check out, remote HEAD when empty
	Auth   *http.BasicAuth // BasicAuth to use when cloning

	gitMu         sync.Mutex       // serializes clone and pull
	gitRepository *git.Repository  // in-memory clone
	fs            billy.Filesystem // worktree of the in-memory clone
}

// GetName returns the name of the configuration source.
func (g *GitRepository) GetName() string {
	return g.Name
}

// auth avoids handing go-git a typed nil when no credentials are set.
func (g *GitRepository) auth() transport.AuthMethod {
	if g.Auth == nil {
		return nil
	}
	return g.Auth
}

// Refresh clones or pulls the repository and decodes the YAML file.
func (g *GitRepository) Refresh(ctx context.Context) error {
	g.gitMu.Lock()
	defer g.gitMu.Unlock()

	if g.gitRepository == nil {
		if err := g.clone(ctx); err != nil {
			return err
		}
	} else if err := g.pull(ctx); err != nil {
		return err
	}

	file, err := g.fs.Open(g.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", g.Path, err)
	}
	defer func(file billy.File) {
		err := file.Close()
		if err != nil {
			logrus.WithError(err).Error("error closing file")
		}
	}(file)

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", g.Path, err)
	}
	if err := g.store(content); err != nil {
		logrus.Debug("error unmarshalling file")
		return err
	}
	return nil
}

func (g *GitRepository) clone(ctx context.Context) error {
	fs := memfs.New()
	logrus.Debugf("Cloning %s into memory", g.URL.Redacted())
	r, err := git.CloneContext(ctx, memory.NewStorage(), fs, &git.CloneOptions{
		URL:  g.URL.String(),
		Auth: g.auth(),
	})
	if err != nil {
		return fmt.Errorf("clone: %w", err)
	}

	if g.Branch != "" {
		w, err := r.Worktree()
		if err != nil {
			return err
		}
		err = r.FetchContext(ctx, &git.FetchOptions{
			RefSpecs: []config.RefSpec{"refs/*:refs/*", "HEAD:refs/heads/HEAD"},
			Auth:     g.auth(),
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("fetch: %w", err)
		}
		err = w.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(g.Branch),
			Force:  true,
		})
		if err != nil {
			return fmt.Errorf("checkout %s: %w", g.Branch, err)
		}
	}

	logrus.Debug("Cloned")
	g.gitRepository = r
	g.fs = fs
	return nil
}

func (g *GitRepository) pull(ctx context.Context) error {
	w, err := g.gitRepository.Worktree()
	if err != nil {
		return err
	}
	logrus.Debug("Pulling")

	pullOptions := &git.PullOptions{Auth: g.auth()}
	if g.Branch != "" {
		pullOptions = &git.PullOptions{
			ReferenceName: plumbing.NewBranchReferenceName(g.Branch),
			Force:         true,
			SingleBranch:  true,
			Auth:          g.auth(),
		}
	}

	err = w.PullContext(ctx, pullOptions)
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		logrus.Debug("Already up to date")
	case err != nil:
		return fmt.Errorf("pull: %w", err)
	default:
		logrus.Debug("Pulled")
	}
	return nil
}
