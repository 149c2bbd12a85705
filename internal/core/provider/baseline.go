package provider

import (
	"context"
	"net/http"

	"swifthub/internal/adapters/github"
	"swifthub/internal/core/auth"
	"swifthub/internal/core/model"
)

// RESTStrategy is the Baseline strategy over the GitHub REST API and the trending service
type RESTStrategy struct {
	gh       *github.Client
	trending *github.Trending
	perPage  int
}

var _ Strategy = (*RESTStrategy)(nil)

// NewBaseline builds a REST strategy. A non-nil transport replaces the network
func NewBaseline(env Environment, cred auth.Credential, transport http.RoundTripper) *RESTStrategy {
	opts := github.Options{
		BaseURL:     env.GitHubBaseURL,
		UserAgent:   env.UserAgent,
		Timeout:     env.Timeout,
		Credential:  cred,
		MaxRetries:  env.MaxRetries,
		MaxRateWait: env.MaxRateWait,
		RatePerSec:  env.RatePerSec,
		Burst:       env.Burst,
		Transport:   transport,
	}
	topts := opts
	topts.BaseURL = env.TrendingBaseURL
	return &RESTStrategy{
		gh:       github.NewClient(opts),
		trending: github.NewTrending(topts, env.TrendingCacheTTL),
		perPage:  env.PerPage,
	}
}

// Capability reports Baseline
func (s *RESTStrategy) Capability() Capability { return Baseline }

// Client exposes the REST client, e.g. for rate limit reporting
func (s *RESTStrategy) Client() *github.Client { return s.gh }

// Viewer returns the authenticated user
func (s *RESTStrategy) Viewer(ctx context.Context) (model.User, error) { return s.gh.Viewer(ctx) }

// User returns a user by login
func (s *RESTStrategy) User(ctx context.Context, login string) (model.User, error) {
	return s.gh.User(ctx, login)
}

// Repository returns a repository by owner and name
func (s *RESTStrategy) Repository(ctx context.Context, owner, name string) (model.Repository, error) {
	return s.gh.Repository(ctx, owner, name)
}

// PageSize returns the per_page value sent with list calls
func (s *RESTStrategy) PageSize() int {
	if s.perPage <= 0 {
		return github.DefaultPerPage
	}
	return s.perPage
}

// SearchRepositories returns one page of search hits
func (s *RESTStrategy) SearchRepositories(ctx context.Context, query string, page int) (model.SearchResult, error) {
	return s.gh.SearchRepositories(ctx, query, page, s.perPage)
}

// UserRepositories returns one page of a user's repositories
func (s *RESTStrategy) UserRepositories(ctx context.Context, login string, page int) ([]model.Repository, error) {
	return s.gh.UserRepositories(ctx, login, page, s.perPage)
}

// TrendingRepositories returns trending repositories for the period
func (s *RESTStrategy) TrendingRepositories(ctx context.Context, language string, since model.Since) ([]model.TrendingRepository, error) {
	return s.trending.Repositories(ctx, language, since)
}

// TrendingDevelopers returns trending developers for the period
func (s *RESTStrategy) TrendingDevelopers(ctx context.Context, language string, since model.Since) ([]model.TrendingDeveloper, error) {
	return s.trending.Developers(ctx, language, since)
}
