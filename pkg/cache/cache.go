// Package cache stores opaque byte payloads with an optional expiry.
//
// The scanner uses it to remember the repository list of an organisation
// between runs so that an interrupted or repeated scan does not page
// through the GitHub API again. Three backends are provided:
//
//   - [FileCache]: one JSON file per key under a cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for scans run from several hosts
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that every backend sees the same layout.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get returns (nil, false, nil) for a miss. A TTL of zero stores the entry
// without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TTLRepoList is how long a fetched organisation listing stays valid.
	TTLRepoList = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// RepoListKey identifies the repository listing of org. Limited
	// listings are stored apart from full ones, so a test run with a small
	// limit never shadows the complete inventory.
	RepoListKey(org string, limited bool) string
}

// DefaultKeyer produces plain, human-readable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RepoListKey returns "repos:<org>" or "repos:<org>:limited".
func (DefaultKeyer) RepoListKey(org string, limited bool) string {
	if limited {
		return fmt.Sprintf("repos:%s:limited", org)
	}
	return "repos:" + org
}
