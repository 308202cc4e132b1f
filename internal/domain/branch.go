package domain

// LocalBranch is a branch from the local branch listing.
type LocalBranch struct {
	Name string
	// Current is set for the branch checked out in this worktree ("*")
	// or in another worktree ("+"). Such branches are never deleted.
	Current bool
}

// ReconcileResult reports the outcome of an orphan branch cleanup.
type ReconcileResult struct {
	Orphans []string
	Deleted []string
	Failed  []string
	DryRun  bool
}
