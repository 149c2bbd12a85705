// Package provider defines the backend access strategy every screen depends on
// and the selector that derives the active one from environment and credential
package provider

import (
	"context"
	"time"

	"swifthub/internal/core/model"
	"swifthub/internal/core/version"
	"swifthub/internal/platform/config"
)

// Capability is the backend access level of a strategy
type Capability uint8

const (
	// Baseline supports primitive REST calls only
	Baseline Capability = iota
	// Enhanced adds GraphQL queries on top of Baseline
	Enhanced
)

func (c Capability) String() string {
	if c == Enhanced {
		return "enhanced"
	}
	return "baseline"
}

// Strategy is the backend access abstraction screens are built on
type Strategy interface {
	Capability() Capability
	// PageSize is the number of items a full page of a list call holds
	PageSize() int

	Viewer(ctx context.Context) (model.User, error)
	User(ctx context.Context, login string) (model.User, error)
	Repository(ctx context.Context, owner, name string) (model.Repository, error)
	SearchRepositories(ctx context.Context, query string, page int) (model.SearchResult, error)
	UserRepositories(ctx context.Context, login string, page int) ([]model.Repository, error)

	TrendingRepositories(ctx context.Context, language string, since model.Since) ([]model.TrendingRepository, error)
	TrendingDevelopers(ctx context.Context, language string, since model.Since) ([]model.TrendingDeveloper, error)
}

// StagingBaseURL is the origin every staging request is addressed to
const StagingBaseURL = "http://staging.swifthub.local"

// Environment is the immutable network configuration read once per provider construction
type Environment struct {
	Staging          bool
	GitHubBaseURL    string
	TrendingBaseURL  string
	UserAgent        string
	Timeout          time.Duration
	MaxRetries       int
	MaxRateWait      time.Duration
	RatePerSec       float64
	Burst            int
	PerPage          int
	TrendingCacheTTL time.Duration
}

// LoadEnvironment reads NETWORK_* keys under cfg, e.g. SWIFTHUB_NETWORK_USE_STAGING
func LoadEnvironment(cfg config.Conf) Environment {
	c := cfg.Prefix("NETWORK_")
	return Environment{
		Staging:          c.MayBool("USE_STAGING", false),
		GitHubBaseURL:    c.MayURL("GITHUB_BASE_URL", "https://api.github.com"),
		TrendingBaseURL:  c.MayURL("TRENDING_BASE_URL", "https://api.gitterapp.com"),
		UserAgent:        c.MayString("USER_AGENT", version.UserAgent()),
		Timeout:          c.MayDuration("TIMEOUT", 10*time.Second),
		MaxRetries:       c.MayInt("MAX_RETRIES", 3),
		MaxRateWait:      c.MayDuration("MAX_RATE_WAIT", 5*time.Second),
		RatePerSec:       c.MayFloat64("RATE_PER_SEC", 10),
		Burst:            c.MayInt("BURST", 5),
		PerPage:          c.MayInt("PER_PAGE", 30),
		TrendingCacheTTL: c.MayDuration("TRENDING_CACHE_TTL", time.Hour),
	}
}
