package library

import (
	"regexp"

	"github.com/matzehuels/uiadoption/pkg/manifest"
)

// Package names a dependency and, optionally, the pattern a declared version
// must match to belong to the current major lineage.
type Package struct {
	Name    string
	Current *regexp.Regexp
}

// Definitions holds the package names and lineage patterns used for
// classification. The defaults match the Government of Alberta design system;
// patterns are expected to move as new majors ship, so they are configurable.
type Definitions struct {
	ReactComponents   Package
	AngularComponents Package
	// WebComponents.Current is the lineage pattern for Vue consumers.
	WebComponents Package
	VueComponents Package

	React   string
	Angular string
	Vue     string
}

// Default version patterns for the current lineages.
const (
	DefaultReactPattern   = `^4\.\d{1,2}\.\d{1,2}`
	DefaultAngularPattern = `^2\.\d{1,2}\.\d{1,2}`
	DefaultVuePattern     = `^1\.\d{1,2}\.\d{1,2}`
)

// DefaultDefinitions returns the built-in package names and patterns.
func DefaultDefinitions() Definitions {
	return Definitions{
		ReactComponents:   Package{Name: "@abgov/react-components", Current: regexp.MustCompile(DefaultReactPattern)},
		AngularComponents: Package{Name: "@abgov/angular-components", Current: regexp.MustCompile(DefaultAngularPattern)},
		WebComponents:     Package{Name: "@abgov/web-components", Current: regexp.MustCompile(DefaultVuePattern)},
		VueComponents:     Package{Name: "@abgov/vue-components"},
		React:             "react",
		Angular:           "@angular/core",
		Vue:               "vue",
	}
}

// Rule pairs a predicate over a repository's manifests with the variant it
// selects.
type Rule struct {
	Variant Variant
	Match   func(ms []manifest.Manifest) bool
}

// Classifier assigns a single Variant to a set of manifests.
type Classifier struct {
	defs  Definitions
	rules []Rule
}

// NewClassifier builds the ranked rule list for defs.
func NewClassifier(defs Definitions) *Classifier {
	uses := func(name string, pattern *regexp.Regexp) func([]manifest.Manifest) bool {
		return func(ms []manifest.Manifest) bool {
			return manifest.Uses(ms, name, pattern)
		}
	}
	usesCurrent := func(p Package) func([]manifest.Manifest) bool {
		return func(ms []manifest.Manifest) bool {
			// Without a lineage pattern nothing can be current; all
			// declarations fall through to the legacy rule.
			return p.Current != nil && manifest.Uses(ms, p.Name, p.Current)
		}
	}

	return &Classifier{
		defs: defs,
		rules: []Rule{
			{ReactUIC, usesCurrent(defs.ReactComponents)},
			{AngularUIC, usesCurrent(defs.AngularComponents)},
			{VueUIC, func(ms []manifest.Manifest) bool {
				return manifest.Uses(ms, defs.WebComponents.Name, nil) && manifest.Uses(ms, defs.Vue, nil)
			}},
			{WebComponentsUIC, uses(defs.WebComponents.Name, nil)},
			{ReactUICOld, uses(defs.ReactComponents.Name, nil)},
			{AngularUICOld, uses(defs.AngularComponents.Name, nil)},
			{VueUICOld, uses(defs.VueComponents.Name, nil)},
			{React, uses(defs.React, nil)},
			{Angular, uses(defs.Angular, nil)},
			{Vue, uses(defs.Vue, nil)},
		},
	}
}

// Rules returns the ranked rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Definitions returns the definitions the classifier was built from.
func (c *Classifier) Definitions() Definitions { return c.defs }

// Classify returns the variant of the first matching rule, or None.
func (c *Classifier) Classify(ms []manifest.Manifest) Variant {
	for _, r := range c.rules {
		if r.Match(ms) {
			return r.Variant
		}
	}
	return None
}

// Evidence returns the dependency prefix and version pattern whose matching
// versions are reported for v. ok is false for variants that report no
// versions. A nil pattern means every declared version is reported.
func (c *Classifier) Evidence(v Variant) (prefix string, pattern *regexp.Regexp, ok bool) {
	switch v {
	case ReactUIC:
		return c.defs.ReactComponents.Name, c.defs.ReactComponents.Current, true
	case AngularUIC:
		return c.defs.AngularComponents.Name, c.defs.AngularComponents.Current, true
	case VueUIC:
		return c.defs.WebComponents.Name, c.defs.WebComponents.Current, true
	case WebComponentsUIC:
		return c.defs.WebComponents.Name, nil, true
	}
	return "", nil, false
}

// Versions returns the versions reported for v, or an empty slice.
func (c *Classifier) Versions(ms []manifest.Manifest, v Variant) []string {
	prefix, pattern, ok := c.Evidence(v)
	if !ok {
		return []string{}
	}
	return manifest.Versions(ms, prefix, pattern)
}
