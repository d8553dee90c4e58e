// Package components counts design-system component usage in a source tree.
//
// # Overview
//
// For each name in [Catalog], [Counter] counts the source lines that open a
// tag for that component, using the spelling and file extensions of the
// repository's [library.Variant]:
//
//	react-uic               GoAIconButton   .tsx .jsx
//	angular-uic, wc-uic     goa-icon-button .html
//	vue-uic                 goa-icon-button .vue
//
// Matching is textual and line based: a line holding two buttons counts
// once. The [Matcher] interface lets a stricter strategy replace
// [LineMatcher] without touching the counter.
package components

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/uiadoption/pkg/library"
)

// Catalog is the ordered list of known component names.
var Catalog = []string{
	"accordion",
	"badge",
	"button",
	"button-group",
	"callout",
	"checkbox",
	"chip",
	"circular-progress",
	"container",
	"details",
	"dropdown",
	"form-stepper",
	"hero-banner",
	"icon",
	"icon-button",
	"input",
	"modal",
	"notification",
	"pagination",
	"popover",
	"radio",
	"skeleton",
	"table",
	"textarea",
	"app-footer",
	"app-header",
	"microsite-header",
	"block",
	"divider",
	"form-item",
	"grid",
	"spacer",
	"one-column-layout",
	"two-column-layout",
}

const (
	reactPrefix   = "GoA"
	elementPrefix = "goa-"
)

// reactSpellings maps catalog names whose React component name differs.
var reactSpellings = map[string]string{
	"textarea": "text-area",
}

// TagName returns the tag spelling of component for v, or "" when v is not
// counted.
func TagName(v library.Variant, component string) string {
	switch v.Family() {
	case library.FamilyReact:
		if s, ok := reactSpellings[component]; ok {
			component = s
		}
		return reactPrefix + pascalCase(component)
	case library.FamilyCustomElement:
		return elementPrefix + strings.ToLower(component)
	}
	return ""
}

func pascalCase(s string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' }) {
		b.WriteString(title.String(part))
	}
	return b.String()
}

// Extensions returns the source file extensions scanned for v.
func Extensions(v library.Variant) []string {
	switch v {
	case library.ReactUIC:
		return []string{".tsx", ".jsx"}
	case library.AngularUIC, library.WebComponentsUIC:
		return []string{".html"}
	case library.VueUIC:
		return []string{".vue"}
	}
	return nil
}
