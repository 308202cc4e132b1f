// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naka-gawa/repokeeper/internal/domain"
	"github.com/naka-gawa/repokeeper/internal/gateway"
)

// DefaultRemote is the remote whose tracking branches are compared against local ones.
const DefaultRemote = "origin"

// Reconciler finds local branches whose remote counterpart is gone and deletes them.
type Reconciler struct {
	git    gateway.Git
	remote string
	logger *zap.Logger
}

// NewReconciler creates a new Reconciler instance.
func NewReconciler(git gateway.Git, remote string, logger *zap.Logger) *Reconciler {
	if remote == "" {
		remote = DefaultRemote
	}
	return &Reconciler{
		git:    git,
		remote: remote,
		logger: logger,
	}
}

// Reconcile refreshes remote-tracking state, computes the orphan branches and,
// unless dryRun is set, deletes them. A failed git invocation aborts the run,
// except for individual deletions, which are logged and skipped.
func (r *Reconciler) Reconcile(ctx context.Context, dryRun bool) (*domain.ReconcileResult, error) {
	if err := r.git.FetchPrune(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch with prune: %w", err)
	}
	if err := r.git.RemoteUpdatePrune(ctx); err != nil {
		return nil, fmt.Errorf("failed to update remotes: %w", err)
	}

	local, err := r.git.LocalBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list local branches: %w", err)
	}
	remote, err := r.git.RemoteBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote branches: %w", err)
	}
	r.logger.Debug("Listed branches",
		zap.Int("local", len(local)),
		zap.Int("remote", len(remote)))

	result := &domain.ReconcileResult{
		Orphans: FindOrphans(local, remote, r.remote),
		DryRun:  dryRun,
	}
	if dryRun {
		return result, nil
	}

	for _, name := range result.Orphans {
		if err := r.git.DeleteBranch(ctx, name); err != nil {
			r.logger.Warn("Failed to delete local branch", zap.String("branch", name), zap.Error(err))
			result.Failed = append(result.Failed, name)
			continue
		}
		r.logger.Info("Deleted local branch", zap.String("branch", name))
		result.Deleted = append(result.Deleted, name)
	}
	return result, nil
}

// FindOrphans returns, in listing order, the local branches that are not
// checked out and have no "<remoteName>/<branch>" entry in remote.
func FindOrphans(local []domain.LocalBranch, remote []string, remoteName string) []string {
	tracked := make(map[string]struct{}, len(remote))
	for _, name := range remote {
		tracked[name] = struct{}{}
	}

	orphans := []string{}
	for _, branch := range local {
		if branch.Current {
			continue
		}
		if _, ok := tracked[remoteName+"/"+branch.Name]; !ok {
			orphans = append(orphans, branch.Name)
		}
	}
	return orphans
}
