package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrInvalidWindow      = errors.New("window must be at least one day")
	ErrTokenMissing       = errors.New("GitHub API token not provided: use --token or set GITHUB_API_TOKEN")
)

// NewRepositoryNotFoundError wraps ErrRepositoryNotFound with the repository name.
func NewRepositoryNotFoundError(owner, repo string) error {
	return fmt.Errorf("%w: %s/%s", ErrRepositoryNotFound, owner, repo)
}
