package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

type client struct {
	log logger.Logger
}

func NewClient(log logger.Logger) Client {
	return &client{
		log: log,
	}
}

func (c *client) Clone(ctx context.Context, repoURL, localPath string, auth Auth) error {
	opts := &gogit.CloneOptions{
		URL:  repoURL,
		Auth: transportAuth(auth),
	}

	if _, err := gogit.PlainCloneContext(ctx, localPath, false, opts); err != nil {
		return fmt.Errorf("cannot clone %s: %w", repoURL, err)
	}

	c.log.Debug("Cloned repository", "url", repoURL, "path", localPath)
	return nil
}

func (c *client) Checkout(ctx context.Context, localRepoPath, branch string, create bool) error {
	wt, err := openWorktree(localRepoPath)
	if err != nil {
		return err
	}

	err = wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		return fmt.Errorf("cannot checkout %s: %w", branch, err)
	}
	return nil
}

func (c *client) AddAll(ctx context.Context, localRepoPath string) error {
	wt, err := openWorktree(localRepoPath)
	if err != nil {
		return err
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("cannot stage changes: %w", err)
	}
	return nil
}

func (c *client) Commit(ctx context.Context, localRepoPath string, commit Commit) (string, error) {
	wt, err := openWorktree(localRepoPath)
	if err != nil {
		return "", err
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("cannot check status before commit: %w", err)
	}
	if status.IsClean() {
		c.log.Info("No changes to commit")
		return "", nil
	}

	hash, err := wt.Commit(commit.Message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  commit.UserName,
			Email: commit.UserEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("cannot commit: %w", err)
	}

	c.log.Debug("Created commit", "hash", hash.String())
	return hash.String(), nil
}

func (c *client) Push(ctx context.Context, localRepoPath string, auth Auth, remote, branch string) error {
	repo, err := gogit.PlainOpen(localRepoPath)
	if err != nil {
		return fmt.Errorf("cannot open repository: %w", err)
	}

	refSpec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(refSpec)},
		Auth:       transportAuth(auth),
	})
	if err != nil {
		if err == gogit.NoErrAlreadyUpToDate {
			c.log.Info("Remote already up to date", "remote", remote, "branch", branch)
			return nil
		}
		return fmt.Errorf("cannot push to %s/%s: %w", remote, branch, err)
	}
	return nil
}

func (c *client) Status(ctx context.Context, localRepoPath string) (string, error) {
	wt, err := openWorktree(localRepoPath)
	if err != nil {
		return "", err
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("cannot get status: %w", err)
	}

	var b strings.Builder
	for path, st := range status {
		fmt.Fprintf(&b, "%c%c %s\n", st.Staging, st.Worktree, path)
	}
	return strings.TrimSpace(b.String()), nil
}

func openWorktree(localRepoPath string) (*gogit.Worktree, error) {
	repo, err := gogit.PlainOpen(localRepoPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("cannot get worktree: %w", err)
	}
	return wt, nil
}

func transportAuth(auth Auth) transport.AuthMethod {
	if auth.Method == AuthToken && auth.Token != "" {
		return &http.BasicAuth{
			Username: "oauth2",
			Password: auth.Token,
		}
	}
	return nil
}
