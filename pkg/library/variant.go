// Package library classifies a repository by the UI framework and design
// system component library it depends on.
//
// # Variants
//
// Every repository resolves to exactly one [Variant]. The four UI-library
// variants ([ReactUIC], [AngularUIC], [VueUIC], [WebComponentsUIC]) are the
// only ones whose component usage is counted. Legacy variants depend on an
// older major lineage of the same package; framework variants depend on the
// bare framework with no component library.
//
// # Classification
//
// [Classifier] evaluates an ordered list of [Rule]s and returns the first
// match. Order is part of the contract: a repository declaring both a
// current React components version and react itself is [ReactUIC], never
// [React].
package library

import "slices"

// Variant identifies a framework and component-library combination.
// Values match the "lib" field of the report format.
type Variant string

// Known variants.
const (
	ReactUIC         Variant = "react-uic"
	AngularUIC       Variant = "angular-uic"
	VueUIC           Variant = "vue-uic"
	WebComponentsUIC Variant = "wc-uic"
	ReactUICOld      Variant = "react-uic-old"
	AngularUICOld    Variant = "angular-uic-old"
	VueUICOld        Variant = "vue-uic-old"
	React            Variant = "react"
	Angular          Variant = "angular"
	Vue              Variant = "vue"
	None             Variant = "none"
)

// Variants lists every variant in classification order, None last.
var Variants = []Variant{
	ReactUIC, AngularUIC, VueUIC, WebComponentsUIC,
	ReactUICOld, AngularUICOld, VueUICOld,
	React, Angular, Vue,
	None,
}

// Valid reports whether v is a member of the closed variant set.
func (v Variant) Valid() bool { return slices.Contains(Variants, v) }

// Counted reports whether component usage is counted for v.
func (v Variant) Counted() bool {
	switch v {
	case ReactUIC, AngularUIC, VueUIC, WebComponentsUIC:
		return true
	}
	return false
}

// Family is the component naming family of a variant.
type Family int

const (
	// FamilyNone is used by variants that are not counted.
	FamilyNone Family = iota
	// FamilyReact renders components as PascalCase JSX elements (GoAButton).
	FamilyReact
	// FamilyCustomElement renders components as kebab-case custom elements (goa-button).
	FamilyCustomElement
)

// Family returns the naming family used to spell component tags for v.
func (v Variant) Family() Family {
	switch v {
	case ReactUIC:
		return FamilyReact
	case AngularUIC, VueUIC, WebComponentsUIC:
		return FamilyCustomElement
	}
	return FamilyNone
}

// String implements fmt.Stringer.
func (v Variant) String() string { return string(v) }

// Label returns a human readable name for reports and tables.
func (v Variant) Label() string {
	switch v {
	case ReactUIC:
		return "React UI components"
	case AngularUIC:
		return "Angular UI components"
	case VueUIC:
		return "Vue + web components"
	case WebComponentsUIC:
		return "Web components"
	case ReactUICOld:
		return "React UI components (legacy)"
	case AngularUICOld:
		return "Angular UI components (legacy)"
	case VueUICOld:
		return "Vue UI components (legacy)"
	case React:
		return "React"
	case Angular:
		return "Angular"
	case Vue:
		return "Vue"
	}
	return "None"
}
