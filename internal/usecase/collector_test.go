package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/repokeeper/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListClosedPullRequests(ctx context.Context, owner, repo string, page, perPage int) ([]domain.PullRequestSummary, int, error) {
	args := m.Called(ctx, owner, repo, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PullRequestSummary), args.Int(1), args.Error(2)
}

func (m *mockFetcher) GetPullRequest(ctx context.Context, owner, repo string, number int) (*domain.PullRequestDetail, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequestDetail), args.Error(1)
}

func (m *mockFetcher) DescribeRepository(ctx context.Context, owner, repo string) (*domain.RepositoryInfo, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepositoryInfo), args.Error(1)
}

// recordingProgress keeps every notification for assertions.
type recordingProgress struct {
	stages   []string
	started  int
	advanced []string
	finished bool
}

func (p *recordingProgress) Stage(step, total int, message string) {
	p.stages = append(p.stages, fmt.Sprintf("[%d/%d] %s", step, total, message))
}
func (p *recordingProgress) Start(total int)      { p.started = total }
func (p *recordingProgress) Advance(title string) { p.advanced = append(p.advanced, title) }
func (p *recordingProgress) Finish()              { p.finished = true }

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func daysAgo(days float64) time.Time {
	return fixedNow.Add(-time.Duration(days * float64(24*time.Hour)))
}

func intPtr(v int) *int { return &v }

func detail(number int, title string, additions *int, deletions int) *domain.PullRequestDetail {
	return &domain.PullRequestDetail{Number: number, Title: title, Additions: additions, Deletions: deletions, ChangedFiles: 1, Commits: 2, Comments: 3}
}

func newTestCollector(fetcher *mockFetcher, opts ...CollectorOption) *Collector {
	opts = append([]CollectorOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewCollector(fetcher, zap.NewNop(), opts...)
}

func TestCollector_Collect_AllInWindow(t *testing.T) {
	fetcher := new(mockFetcher)
	progress := &recordingProgress{}

	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return([]domain.PullRequestSummary{
		{Number: 3, AuthorLogin: "alice", CreatedAt: daysAgo(1)},
		{Number: 2, AuthorLogin: "bob", CreatedAt: daysAgo(2)},
		{Number: 1, AuthorLogin: "alice", CreatedAt: daysAgo(3)},
	}, 0, nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 3).Return(detail(3, "third", intPtr(10), 4), nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 2).Return(detail(2, "second", intPtr(10), 4), nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 1).Return(detail(1, "first", intPtr(10), 4), nil)

	collector := newTestCollector(fetcher, WithProgress(progress))
	collection, err := collector.Collect(context.Background(), "org", "repo", 14)

	require.NoError(t, err)
	assert.Equal(t, domain.MetricSeries{6, 6, 6}, collection.Series[domain.MetricNetLOC])
	assert.Equal(t, []string{"third", "second", "first"}, collection.Titles)
	assert.Equal(t, 2, collection.Authors.Count("alice"))
	assert.Equal(t, daysAgo(14), collection.Since)

	report, err := Summarize(collection)
	require.NoError(t, err)
	netLOC := report.Metrics[2]
	assert.Equal(t, domain.MetricNetLOC, netLOC.Metric)
	assert.Equal(t, 6.0, netLOC.Mean)
	assert.Equal(t, 0.0, netLOC.StdDev)

	assert.Equal(t, []string{
		"[1/2] Analysing PRs of the last 14 days for org/repo",
		"[2/2] Fetching PR details",
	}, progress.stages)
	assert.Equal(t, 3, progress.started)
	assert.Equal(t, []string{"third", "second", "first"}, progress.advanced)
	assert.True(t, progress.finished)
	fetcher.AssertExpectations(t)
}

func TestCollector_Collect_StopsAtFirstPageWithOlderRecord(t *testing.T) {
	fetcher := new(mockFetcher)

	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 2).Return([]domain.PullRequestSummary{
		{Number: 10, AuthorLogin: "alice", CreatedAt: daysAgo(1)},
		{Number: 9, AuthorLogin: "bob", CreatedAt: daysAgo(5)},
	}, 2, nil).Once()
	// The second page mixes an in-window and an out-of-window pull request.
	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 2, 2).Return([]domain.PullRequestSummary{
		{Number: 8, AuthorLogin: "carol", CreatedAt: daysAgo(6)},
		{Number: 7, AuthorLogin: "dave", CreatedAt: daysAgo(8)},
	}, 3, nil).Once()
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 10).Return(detail(10, "ten", intPtr(5), 1), nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 9).Return(detail(9, "nine", nil, 2), nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 8).Return(detail(8, "eight", intPtr(1), 1), nil)

	collector := newTestCollector(fetcher, WithPageSize(2))
	collection, err := collector.Collect(context.Background(), "org", "repo", 7)

	require.NoError(t, err)
	assert.Equal(t, []string{"ten", "nine", "eight"}, collection.Titles)
	assert.Equal(t, domain.MetricSeries{5, 0, 1}, collection.Series[domain.MetricAdditions])
	assert.Equal(t, domain.MetricSeries{4, -2, 0}, collection.Series[domain.MetricNetLOC])
	assert.Equal(t, 0, collection.Authors.Count("dave"))
	fetcher.AssertNotCalled(t, "ListClosedPullRequests", mock.Anything, "org", "repo", 3, 2)
	fetcher.AssertNotCalled(t, "GetPullRequest", mock.Anything, "org", "repo", 7)
	fetcher.AssertExpectations(t)
}

func TestCollector_Collect_CutoffInstantIsInWindow(t *testing.T) {
	fetcher := new(mockFetcher)

	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return([]domain.PullRequestSummary{
		{Number: 2, AuthorLogin: "alice", CreatedAt: daysAgo(14)},
		{Number: 1, AuthorLogin: "bob", CreatedAt: daysAgo(14).Add(-time.Nanosecond)},
	}, 2, nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 2).Return(detail(2, "edge", intPtr(1), 0), nil)

	collection, err := newTestCollector(fetcher).Collect(context.Background(), "org", "repo", 14)

	require.NoError(t, err)
	assert.Equal(t, []string{"edge"}, collection.Titles)
	fetcher.AssertExpectations(t)
}

func TestCollector_Collect_VeryLongWindow(t *testing.T) {
	fetcher := new(mockFetcher)

	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return([]domain.PullRequestSummary{
		{Number: 1, AuthorLogin: "alice", CreatedAt: daysAgo(1)},
	}, 0, nil)
	fetcher.On("GetPullRequest", mock.Anything, "org", "repo", 1).Return(detail(1, "yesterday", intPtr(3), 1), nil)

	collection, err := newTestCollector(fetcher).Collect(context.Background(), "org", "repo", 200000)

	require.NoError(t, err)
	assert.True(t, collection.Since.Before(fixedNow), "cutoff %s must lie in the past", collection.Since)
	assert.Equal(t, time.Date(1479, 3, 21, 12, 0, 0, 0, time.UTC), collection.Since)
	assert.Equal(t, []string{"yesterday"}, collection.Titles)
	fetcher.AssertExpectations(t)
}

func TestCollector_Collect_EmptyHistory(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return([]domain.PullRequestSummary{}, 0, nil)

	collection, err := newTestCollector(fetcher).Collect(context.Background(), "org", "repo", 14)

	require.NoError(t, err)
	assert.Equal(t, 0, collection.Len())
	report, err := Summarize(collection)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalPullRequests)
	assert.Empty(t, report.Authors)
	fetcher.AssertExpectations(t)
}

func TestCollector_Collect_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		setup       func(f *mockFetcher)
		days        int
		expectedErr error
	}{
		{
			name:        "invalid window",
			setup:       func(f *mockFetcher) {},
			days:        0,
			expectedErr: domain.ErrInvalidWindow,
		},
		{
			name: "listing fails",
			setup: func(f *mockFetcher) {
				f.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return(nil, 0, errors.New("500 Internal Server Error"))
			},
			days: 14,
		},
		{
			name: "detail fetch for #42 returns 404",
			setup: func(f *mockFetcher) {
				f.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return([]domain.PullRequestSummary{
					{Number: 43, AuthorLogin: "alice", CreatedAt: daysAgo(1)},
					{Number: 42, AuthorLogin: "bob", CreatedAt: daysAgo(2)},
					{Number: 41, AuthorLogin: "carol", CreatedAt: daysAgo(3)},
				}, 0, nil)
				f.On("GetPullRequest", mock.Anything, "org", "repo", 43).Return(detail(43, "ok", intPtr(1), 1), nil)
				f.On("GetPullRequest", mock.Anything, "org", "repo", 42).Return(nil, errors.New("failed to fetch pull request #42: 404 Not Found"))
			},
			days: 14,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			tc.setup(fetcher)

			collection, err := newTestCollector(fetcher).Collect(context.Background(), "org", "repo", tc.days)

			assert.Error(t, err)
			assert.Nil(t, collection)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
			fetcher.AssertNotCalled(t, "GetPullRequest", mock.Anything, "org", "repo", 41)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCollector_Collect_ConcurrentFetchKeepsOrder(t *testing.T) {
	fetcher := new(mockFetcher)

	summaries := make([]domain.PullRequestSummary, 0, 8)
	for n := 8; n >= 1; n-- {
		summaries = append(summaries, domain.PullRequestSummary{Number: n, AuthorLogin: fmt.Sprintf("user%d", n%3), CreatedAt: daysAgo(float64(9 - n))})
	}
	fetcher.On("ListClosedPullRequests", mock.Anything, "org", "repo", 1, 10).Return(summaries, 0, nil)
	for n := 8; n >= 1; n-- {
		fetcher.On("GetPullRequest", mock.Anything, "org", "repo", n).Return(detail(n, fmt.Sprintf("pr-%d", n), intPtr(n*10), n), nil)
	}

	collection, err := newTestCollector(fetcher, WithConcurrency(4)).Collect(context.Background(), "org", "repo", 30)

	require.NoError(t, err)
	assert.Equal(t, []string{"pr-8", "pr-7", "pr-6", "pr-5", "pr-4", "pr-3", "pr-2", "pr-1"}, collection.Titles)
	assert.Equal(t, domain.MetricSeries{72, 63, 54, 45, 36, 27, 18, 9}, collection.Series[domain.MetricNetLOC])
	assert.Equal(t, []domain.AuthorCount{
		{Login: "user2", PullRequests: 3},
		{Login: "user1", PullRequests: 3},
		{Login: "user0", PullRequests: 2},
	}, collection.Authors.Ranked())
}

func TestCollector_Preflight(t *testing.T) {
	t.Run("resolves repository", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("DescribeRepository", mock.Anything, "org", "repo").Return(&domain.RepositoryInfo{NameWithOwner: "Org/Repo", ClosedPullRequests: 12}, nil)

		info, err := newTestCollector(fetcher).Preflight(context.Background(), "org", "repo")

		require.NoError(t, err)
		assert.Equal(t, "Org/Repo", info.NameWithOwner)
	})

	t.Run("unknown repository", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("DescribeRepository", mock.Anything, "org", "repo").Return(nil, domain.NewRepositoryNotFoundError("org", "repo"))

		info, err := newTestCollector(fetcher).Preflight(context.Background(), "org", "repo")

		assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
		assert.Nil(t, info)
	})
}
