package gateway

import (
	"fmt"
	"strings"
)

// RemoteParseError indicates a remote URL could not be mapped to an owner and repository.
type RemoteParseError struct {
	Input string
}

func (e RemoteParseError) Error() string {
	return fmt.Sprintf("cannot derive owner/repository from remote url %q", e.Input)
}

// ParseRemoteRepository extracts the owner and repository name from a git
// remote URL. SSH ("git@host:owner/repo.git", "ssh://git@host/owner/repo.git")
// and HTTPS ("https://host/owner/repo(.git)") forms are supported.
func ParseRemoteRepository(remote string) (owner, repo string, err error) {
	trimmed := strings.TrimSpace(remote)

	var path string
	switch {
	case strings.HasPrefix(trimmed, "ssh://"):
		rest := strings.TrimPrefix(trimmed, "ssh://")
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return "", "", RemoteParseError{Input: remote}
		}
		path = rest[slash+1:]
	case strings.HasPrefix(trimmed, "git@"):
		_, hostAndPath, _ := strings.Cut(trimmed, "@")
		_, p, found := strings.Cut(hostAndPath, ":")
		if !found {
			return "", "", RemoteParseError{Input: remote}
		}
		path = p
	case strings.HasPrefix(trimmed, "https://"), strings.HasPrefix(trimmed, "http://"):
		rest := trimmed[strings.Index(trimmed, "://")+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return "", "", RemoteParseError{Input: remote}
		}
		path = rest[slash+1:]
	default:
		return "", "", RemoteParseError{Input: remote}
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) != 2 {
		return "", "", RemoteParseError{Input: remote}
	}
	owner = segments[0]
	repo = strings.TrimSuffix(segments[1], ".git")
	if owner == "" || repo == "" {
		return "", "", RemoteParseError{Input: remote}
	}
	return owner, repo, nil
}
