package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/repokeeper/internal/domain"
	"github.com/naka-gawa/repokeeper/internal/gateway"
)

const (
	DefaultPageSize    = 10
	DefaultConcurrency = 1
)

// Collector is the use case for gathering pull request statistics.
// It pages through closed pull requests inside a trailing window and
// fetches the details of each one.
type Collector struct {
	fetcher     gateway.Fetcher
	logger      *zap.Logger
	progress    Progress
	pageSize    int
	concurrency int
	now         func() time.Time
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithPageSize sets the number of pull requests requested per listing page.
func WithPageSize(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithConcurrency sets how many detail requests may be in flight at once.
func WithConcurrency(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithProgress installs a progress observer.
func WithProgress(p Progress) CollectorOption {
	return func(c *Collector) {
		if p != nil {
			c.progress = p
		}
	}
}

// WithClock replaces the time source used to compute the window cutoff.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger *zap.Logger, opts ...CollectorOption) *Collector {
	c := &Collector{
		fetcher:     fetcher,
		logger:      logger,
		progress:    NopProgress{},
		pageSize:    DefaultPageSize,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preflight verifies that the repository exists before any pagination starts.
func (c *Collector) Preflight(ctx context.Context, owner, repo string) (*domain.RepositoryInfo, error) {
	info, err := c.fetcher.DescribeRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Repository resolved",
		zap.String("repository", info.NameWithOwner),
		zap.Int("closed_pull_requests", info.ClosedPullRequests))
	return info, nil
}

// Collect gathers the statistics of every closed pull request created within
// the last `days` days. Any failed request aborts the whole collection.
func (c *Collector) Collect(ctx context.Context, owner, repo string, days int) (*domain.Collection, error) {
	if days < 1 {
		return nil, domain.ErrInvalidWindow
	}
	cutoff := c.now().UTC().AddDate(0, 0, -days)

	c.progress.Stage(1, 2, fmt.Sprintf("Analysing PRs of the last %d days for %s/%s", days, owner, repo))
	summaries, err := c.listInWindow(ctx, owner, repo, cutoff)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Found pull requests in window",
		zap.Int("count", len(summaries)),
		zap.Time("cutoff", cutoff))

	c.progress.Stage(2, 2, "Fetching PR details")
	details, err := c.fetchDetails(ctx, owner, repo, summaries)
	if err != nil {
		return nil, err
	}

	collection := domain.NewCollection(owner, repo, days, cutoff)
	for i, detail := range details {
		collection.Record(summaries[i].AuthorLogin, *detail)
	}
	c.logger.Info("Collected pull request statistics", zap.Int("pull_requests", collection.Len()))
	return collection, nil
}

// listInWindow pages through closed pull requests, newest first, and stops at
// the first page holding a pull request older than cutoff. Older entries of
// that last page are dropped.
func (c *Collector) listInWindow(ctx context.Context, owner, repo string, cutoff time.Time) ([]domain.PullRequestSummary, error) {
	var all []domain.PullRequestSummary
	page := 1
	for {
		summaries, nextPage, err := c.fetcher.ListClosedPullRequests(ctx, owner, repo, page, c.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, summaries...)

		if containsCreatedBefore(summaries, cutoff) || nextPage == 0 || len(summaries) == 0 {
			break
		}
		page = nextPage
	}

	inWindow := make([]domain.PullRequestSummary, 0, len(all))
	for _, s := range all {
		if !s.CreatedBefore(cutoff) {
			inWindow = append(inWindow, s)
		}
	}
	return inWindow, nil
}

func containsCreatedBefore(summaries []domain.PullRequestSummary, cutoff time.Time) bool {
	for _, s := range summaries {
		if s.CreatedBefore(cutoff) {
			return true
		}
	}
	return false
}

// fetchDetails fetches one detail record per summary using at most
// c.concurrency requests at a time. The result is index-aligned with summaries.
func (c *Collector) fetchDetails(ctx context.Context, owner, repo string, summaries []domain.PullRequestSummary) ([]*domain.PullRequestDetail, error) {
	details := make([]*domain.PullRequestDetail, len(summaries))

	c.progress.Start(len(summaries))
	defer c.progress.Finish()

	var progressMu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	for i, s := range summaries {
		i, s := i, s
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			detail, err := c.fetcher.GetPullRequest(egCtx, owner, repo, s.Number)
			if err != nil {
				return err
			}
			details[i] = detail

			progressMu.Lock()
			c.progress.Advance(detail.Title)
			progressMu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}
