package git

import (
	"context"
)

type Client interface {
	Clone(ctx context.Context, repoURL, localPath string, auth Auth) error
	Checkout(ctx context.Context, localRepoPath, branch string, create bool) error
	AddAll(ctx context.Context, localRepoPath string) error
	Commit(ctx context.Context, localRepoPath string, commit Commit) (string, error)
	Push(ctx context.Context, localRepoPath string, auth Auth, remote, branch string) error
	Status(ctx context.Context, localRepoPath string) (string, error)
}

type Auth struct {
	Method AuthMethod
	Token  string
}

type AuthMethod string

const (
	AuthNone  AuthMethod = "none"
	AuthToken AuthMethod = "token"
)

type Commit struct {
	UserName  string
	UserEmail string
	Message   string
}
