package inventory

import "github.com/matzehuels/uiadoption/pkg/library"

// Stats counts repositories per variant.
//
// Total counts repositories that resolved to any variant other than none;
// None counts the rest, including repositories that could not be fetched.
// The per-variant counters plus None always add up to the number of
// repositories recorded.
type Stats struct {
	Total int `json:"totalLibCount" bson:"totalLibCount" yaml:"totalLibCount"`

	React   int `json:"reactCount" bson:"reactCount" yaml:"reactCount"`
	Angular int `json:"angularCount" bson:"angularCount" yaml:"angularCount"`
	Vue     int `json:"vueCount" bson:"vueCount" yaml:"vueCount"`

	ReactUIC         int `json:"reactUICLibCount" bson:"reactUICLibCount" yaml:"reactUICLibCount"`
	AngularUIC       int `json:"angularUICLibCount" bson:"angularUICLibCount" yaml:"angularUICLibCount"`
	VueUIC           int `json:"vueUICLibCount" bson:"vueUICLibCount" yaml:"vueUICLibCount"`
	WebComponentsUIC int `json:"wcUICLibCount" bson:"wcUICLibCount" yaml:"wcUICLibCount"`

	ReactUICOld   int `json:"reactUICLibCountOld" bson:"reactUICLibCountOld" yaml:"reactUICLibCountOld"`
	AngularUICOld int `json:"angularUICLibCountOld" bson:"angularUICLibCountOld" yaml:"angularUICLibCountOld"`
	VueUICOld     int `json:"vueUICLibCountOld" bson:"vueUICLibCountOld" yaml:"vueUICLibCountOld"`

	None int `json:"noneCount" bson:"noneCount" yaml:"noneCount"`
}

// Delta returns Stats recording a single repository of variant v.
func Delta(v library.Variant) Stats {
	var s Stats
	s.Add(v)
	return s
}

// Add records one repository of variant v. Unknown variants count as none.
func (s *Stats) Add(v library.Variant) {
	p := s.counter(v)
	if p == nil {
		s.None++
		return
	}
	*p++
	s.Total++
}

// Merge folds d into s.
func (s *Stats) Merge(d Stats) {
	s.Total += d.Total
	s.None += d.None
	for _, v := range library.Variants {
		if p := s.counter(v); p != nil {
			*p += d.Count(v)
		}
	}
}

// Count returns the counter for v.
func (s Stats) Count(v library.Variant) int {
	if v == library.None {
		return s.None
	}
	if p := s.counter(v); p != nil {
		return *p
	}
	return 0
}

// Processed returns the number of repositories recorded.
func (s Stats) Processed() int { return s.Total + s.None }

// UILibraries returns the number of repositories on a current component
// library lineage.
func (s Stats) UILibraries() int {
	return s.ReactUIC + s.AngularUIC + s.VueUIC + s.WebComponentsUIC
}

func (s *Stats) counter(v library.Variant) *int {
	switch v {
	case library.ReactUIC:
		return &s.ReactUIC
	case library.AngularUIC:
		return &s.AngularUIC
	case library.VueUIC:
		return &s.VueUIC
	case library.WebComponentsUIC:
		return &s.WebComponentsUIC
	case library.ReactUICOld:
		return &s.ReactUICOld
	case library.AngularUICOld:
		return &s.AngularUICOld
	case library.VueUICOld:
		return &s.VueUICOld
	case library.React:
		return &s.React
	case library.Angular:
		return &s.Angular
	case library.Vue:
		return &s.Vue
	}
	return nil
}
