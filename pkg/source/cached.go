package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/uiadoption/pkg/cache"
	"github.com/matzehuels/uiadoption/pkg/observability"
)

const repoListKeyType = "repos"

// CachedLister serves repository listings from a cache and falls back to
// the wrapped Lister on a miss.
//
// A miss, an unreadable entry and an empty cached list all trigger a fresh
// listing. Cache failures never fail the listing: read errors count as a
// miss and write errors are logged.
type CachedLister struct {
	Inner  Lister
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger

	// Limited stores the listing apart from unbounded scans.
	Limited bool
	// Refresh skips the cache read but still writes the fresh listing.
	Refresh bool
}

// NewCachedLister wraps inner. Nil collaborators get defaults: a NullCache,
// the default keyer and cache.TTLRepoList.
func NewCachedLister(inner Lister, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *CachedLister {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedLister{Inner: inner, Cache: c, Keyer: keyer, TTL: cache.TTLRepoList, Logger: logger}
}

// ListRepos implements Lister.
func (l *CachedLister) ListRepos(ctx context.Context, org string) ([]Repo, error) {
	key := l.Keyer.RepoListKey(org, l.Limited)
	hooks := observability.Cache()

	if !l.Refresh {
		if repos, ok := l.read(ctx, key); ok {
			hooks.OnCacheHit(ctx, repoListKeyType)
			l.Logger.Debug("repository list from cache", "org", org, "repos", len(repos))
			return repos, nil
		}
		hooks.OnCacheMiss(ctx, repoListKeyType)
	}

	repos, err := l.Inner.ListRepos(ctx, org)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(repos)
	if err != nil {
		l.Logger.Warn("encode repository list", "err", err)
		return repos, nil
	}
	if err := l.Cache.Set(ctx, key, data, l.TTL); err != nil {
		l.Logger.Warn("write repository list cache", "key", key, "err", err)
		return repos, nil
	}
	hooks.OnCacheSet(ctx, repoListKeyType, len(data))
	return repos, nil
}

func (l *CachedLister) read(ctx context.Context, key string) ([]Repo, bool) {
	data, ok, err := l.Cache.Get(ctx, key)
	if err != nil {
		l.Logger.Warn("read repository list cache", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var repos []Repo
	if err := json.Unmarshal(data, &repos); err != nil {
		l.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		return nil, false
	}
	if len(repos) == 0 {
		return nil, false
	}
	return repos, true
}
