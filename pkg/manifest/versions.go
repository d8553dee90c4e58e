package manifest

import (
	"regexp"
	"strings"
)

// Versions returns every declared version of dependencies whose name starts
// with prefix, in manifest order and, within a manifest, dependencies before
// devDependencies. Versions are cleaned with [CleanVersion].
//
// When pattern is non-nil only declarations with a matching candidate (see
// [Candidates]) are returned, as that candidate. So "workspace:^4.1.2" and
// "^3.0.0 || ^4.0.0" both satisfy a 4.x pattern.
//
// The result is never nil.
func Versions(ms []Manifest, prefix string, pattern *regexp.Regexp) []string {
	versions := []string{}
	for _, m := range ms {
		for _, dep := range m.All() {
			if !strings.HasPrefix(dep.Name, prefix) {
				continue
			}
			if pattern == nil {
				if v := CleanVersion(dep.Version); v != "" {
					versions = append(versions, v)
				}
				continue
			}
			for _, v := range Candidates(dep.Version) {
				if pattern.MatchString(v) {
					versions = append(versions, v)
					break
				}
			}
		}
	}
	return versions
}

// Candidates returns the bare versions a declaration may resolve to, in
// declaration order: the "workspace:" and "npm:<name>@" protocol prefixes are
// removed, "||" alternatives are split, and each alternative is reduced to
// its first cleaned version (">=4.0.0 <5.0.0" gives "4.0.0").
func Candidates(v string) []string {
	v = strings.Trim(v, versionCutset)
	v = strings.TrimPrefix(v, "workspace:")
	if rest, ok := strings.CutPrefix(v, "npm:"); ok {
		// npm:@scope/name@range; the scope's own "@" is at index 0.
		if i := strings.LastIndexByte(rest, '@'); i > 0 {
			rest = rest[i+1:]
		}
		v = rest
	}

	var out []string
	for _, alt := range strings.Split(v, "||") {
		fields := strings.Fields(CleanVersion(alt))
		if len(fields) == 0 {
			continue
		}
		if c := CleanVersion(fields[0]); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Uses reports whether any manifest declares a dependency starting with prefix
// whose version satisfies pattern (any version when pattern is nil).
func Uses(ms []Manifest, prefix string, pattern *regexp.Regexp) bool {
	return len(Versions(ms, prefix, pattern)) > 0
}

const versionCutset = " \t\r\n\"'`,;"

// CleanVersion strips quoting and punctuation left over from raw-text
// extraction, plus leading range operators, so "^4.12.3" and "\"4.12.3\","
// both become "4.12.3". Non-semver specifiers ("latest", "workspace:*") are
// returned trimmed but otherwise unchanged.
func CleanVersion(v string) string {
	v = strings.Trim(v, versionCutset)
	v = strings.TrimLeft(v, "^~=<> \tv")
	return strings.Trim(v, versionCutset)
}
