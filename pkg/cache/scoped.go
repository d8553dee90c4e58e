package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
// The CLI scopes keys by a hash of the GitHub token, so a listing fetched
// with access to private repositories is never served to a run without it:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), TokenScope(token))
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RepoListKey returns the prefixed listing key.
func (k *ScopedKeyer) RepoListKey(org string, limited bool) string {
	return k.prefix + k.inner.RepoListKey(org, limited)
}

// TokenScope returns a key prefix derived from an API token. An empty token
// maps to the anonymous scope.
func TokenScope(token string) string {
	if token == "" {
		return "anon:"
	}
	return "tok:" + Hash([]byte(token))[:12] + ":"
}
