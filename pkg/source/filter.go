package source

import "regexp"

// Filter selects which listed repositories are scanned.
type Filter struct {
	SkipArchived bool
	SkipDisabled bool
	SkipForks    bool
	// Match, when set, keeps only repositories whose name matches.
	Match *regexp.Regexp
}

// Keep reports whether r passes the filter.
func (f Filter) Keep(r Repo) bool {
	switch {
	case f.SkipArchived && r.Archived:
		return false
	case f.SkipDisabled && r.Disabled:
		return false
	case f.SkipForks && r.Fork:
		return false
	case f.Match != nil && !f.Match.MatchString(r.Name):
		return false
	}
	return true
}

// Apply returns the repositories that pass, in input order.
func (f Filter) Apply(repos []Repo) []Repo {
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if f.Keep(r) {
			out = append(out, r)
		}
	}
	return out
}
