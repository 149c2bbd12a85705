package github

import (
	"context"
	"net/url"
	"slices"
	"time"

	"swifthub/internal/core/auth"
	"swifthub/internal/core/model"

	"github.com/patrickmn/go-cache"
)

const (
	trendingURLDefault = "https://api.gitterapp.com"
	defaultTrendingTTL = time.Hour
)

// Trending reads the trending repositories and developers service.
// Answers are cached per (kind, language, since) for the configured TTL.
type Trending struct {
	c     *Client
	cache *cache.Cache
}

// NewTrending builds a trending client. The credential is never forwarded to the third-party service
func NewTrending(o Options, ttl time.Duration) *Trending {
	if o.BaseURL == "" {
		o.BaseURL = trendingURLDefault
	}
	if ttl <= 0 {
		ttl = defaultTrendingTTL
	}
	o.Credential = auth.None()
	return &Trending{
		c:     NewClient(o),
		// no janitor goroutine; expired keys are replaced on the next miss
		cache: cache.New(ttl, 0),
	}
}

// Repositories lists trending repositories: GET /repositories
func (t *Trending) Repositories(ctx context.Context, language string, since model.Since) ([]model.TrendingRepository, error) {
	return cached[model.TrendingRepository](ctx, t, "repositories", language, since)
}

// Developers lists trending developers: GET /developers
func (t *Trending) Developers(ctx context.Context, language string, since model.Since) ([]model.TrendingDeveloper, error) {
	return cached[model.TrendingDeveloper](ctx, t, "developers", language, since)
}

// Flush drops every cached answer
func (t *Trending) Flush() { t.cache.Flush() }

func cached[T any](ctx context.Context, t *Trending, kind, language string, since model.Since) ([]T, error) {
	key := kind + ":" + language + ":" + string(since)
	if v, ok := t.cache.Get(key); ok {
		if items, ok := v.([]T); ok {
			return slices.Clone(items), nil
		}
	}
	q := url.Values{}
	q.Set("language", language)
	q.Set("since", string(since))
	var out []T
	if err := t.c.getJSON(ctx, "/"+kind+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	t.cache.SetDefault(key, slices.Clone(out))
	t.c.log.Debug().Str("key", key).Int("items", len(out)).Msg("trending cached")
	return out, nil
}
