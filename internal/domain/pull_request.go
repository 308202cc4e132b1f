package domain

import "time"

// PullRequestSummary is a row of the closed pull request listing.
type PullRequestSummary struct {
	Number      int
	AuthorLogin string
	CreatedAt   time.Time
}

// CreatedBefore reports whether the pull request was opened strictly before cutoff.
// A pull request created exactly at cutoff is still inside the window.
func (s PullRequestSummary) CreatedBefore(cutoff time.Time) bool {
	return s.CreatedAt.Before(cutoff)
}

// PullRequestDetail holds the per-pull-request numbers used for statistics.
type PullRequestDetail struct {
	Number int
	Title  string
	// Additions is nil when the API omits the field.
	Additions    *int
	Deletions    int
	ChangedFiles int
	Commits      int
	Comments     int
	CreatedAt    time.Time
}

// AdditionsOrZero returns the number of added lines, treating an absent value as zero.
func (d PullRequestDetail) AdditionsOrZero() int {
	if d.Additions == nil {
		return 0
	}
	return *d.Additions
}

// RepositoryInfo describes a repository as reported by the preflight query.
type RepositoryInfo struct {
	NameWithOwner      string
	ClosedPullRequests int
}
