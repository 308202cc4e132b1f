// Package gateway provides gateways to GitHub and to the local git binary,
// abstracting away the underlying REST and GraphQL clients and process execution.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/repokeeper/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching pull request information from GitHub.
type Fetcher interface {
	// ListClosedPullRequests returns one page of closed pull requests, newest first,
	// together with the next page number (0 when there is none).
	ListClosedPullRequests(ctx context.Context, owner, repo string, page, perPage int) ([]domain.PullRequestSummary, int, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*domain.PullRequestDetail, error)
	DescribeRepository(ctx context.Context, owner, repo string) (*domain.RepositoryInfo, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.Logger
}

// repositoryQuery resolves the canonical repository name and its closed pull request count.
type repositoryQuery struct {
	Repository struct {
		NameWithOwner string
		PullRequests  struct {
			TotalCount int
		} `graphql:"pullRequests(states: [CLOSED, MERGED])"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GatewayOption customises a GitHubGateway.
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	baseURL string
}

// WithBaseURL points the gateway at another GitHub API host. REST calls go
// to baseURL and GraphQL calls to baseURL + "/graphql".
func WithBaseURL(baseURL string) GatewayOption {
	return func(o *gatewayOptions) {
		o.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// Requests are sent exactly once: rate limited responses are logged and
// returned to the caller as errors, never retried.
func NewGitHubGateway(token string, logger *zap.Logger, opts ...GatewayOption) (Fetcher, error) {
	var o gatewayOptions
	for _, opt := range opts {
		opt(&o)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if o.baseURL != "" {
		baseURL, err := url.Parse(o.baseURL + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse GitHub base URL: %w", err)
		}
		restClient.BaseURL = baseURL
		graphqlClient = githubv4.NewEnterpriseClient(o.baseURL+"/graphql", httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}, nil
}

// logRateLimit reports primary and secondary rate limit errors.
func (g *GitHubGateway) logRateLimit(err error) {
	var secondary *github.AbuseRateLimitError
	var primary *github.RateLimitError
	switch {
	case errors.As(err, &secondary):
		fields := []zap.Field{zap.String("message", secondary.Message)}
		if secondary.RetryAfter != nil {
			fields = append(fields, zap.Duration("retry_after", *secondary.RetryAfter))
		}
		g.logger.Warn("GitHub secondary rate limit reached", fields...)
	case errors.As(err, &primary):
		g.logger.Warn("GitHub rate limit reached",
			zap.Int("limit", primary.Rate.Limit),
			zap.Time("reset", primary.Rate.Reset.Time))
	}
}

func (g *GitHubGateway) ListClosedPullRequests(ctx context.Context, owner, repo string, page, perPage int) ([]domain.PullRequestSummary, int, error) {
	g.logger.Debug("Fetching closed pull requests",
		zap.String("repository", owner+"/"+repo),
		zap.Int("page", page),
		zap.Int("per_page", perPage))

	opts := &github.PullRequestListOptions{
		State:       "closed",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	prs, resp, err := g.restClient.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		g.logRateLimit(err)
		return nil, 0, fmt.Errorf("failed to list closed pull requests (page %d): %w", page, err)
	}

	summaries := make([]domain.PullRequestSummary, 0, len(prs))
	for _, pr := range prs {
		summaries = append(summaries, domain.PullRequestSummary{
			Number:      pr.GetNumber(),
			AuthorLogin: pr.GetUser().GetLogin(),
			CreatedAt:   pr.GetCreatedAt().Time,
		})
	}
	return summaries, resp.NextPage, nil
}

func (g *GitHubGateway) GetPullRequest(ctx context.Context, owner, repo string, number int) (*domain.PullRequestDetail, error) {
	g.logger.Debug("Fetching pull request details", zap.Int("number", number))

	pr, _, err := g.restClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logRateLimit(err)
		return nil, fmt.Errorf("failed to fetch pull request #%d: %w", number, err)
	}

	return &domain.PullRequestDetail{
		Number:       number,
		Title:        pr.GetTitle(),
		Additions:    pr.Additions,
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		Commits:      pr.GetCommits(),
		Comments:     pr.GetComments(),
		CreatedAt:    pr.GetCreatedAt().Time,
	}, nil
}

// DescribeRepository runs the GraphQL preflight query for the repository.
func (g *GitHubGateway) DescribeRepository(ctx context.Context, owner, repo string) (*domain.RepositoryInfo, error) {
	g.logger.Debug("Describing repository using GraphQL API", zap.String("repository", owner+"/"+repo))

	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	var q repositoryQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		if strings.Contains(err.Error(), "Could not resolve to a Repository") {
			return nil, domain.NewRepositoryNotFoundError(owner, repo)
		}
		return nil, fmt.Errorf("failed to execute GraphQL query for repository: %w", err)
	}
	if q.Repository.NameWithOwner == "" {
		return nil, domain.NewRepositoryNotFoundError(owner, repo)
	}

	return &domain.RepositoryInfo{
		NameWithOwner:      q.Repository.NameWithOwner,
		ClosedPullRequests: q.Repository.PullRequests.TotalCount,
	}, nil
}
