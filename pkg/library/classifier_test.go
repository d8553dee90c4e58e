package library

import (
	"reflect"
	"testing"

	"github.com/matzehuels/uiadoption/pkg/manifest"
)

func manifests(t *testing.T, docs ...string) []manifest.Manifest {
	t.Helper()
	var ms []manifest.Manifest
	for _, d := range docs {
		m, err := manifest.ParseBytes("package.json", []byte(d))
		if err != nil {
			t.Fatal(err)
		}
		ms = append(ms, m)
	}
	return ms
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultDefinitions())

	tests := []struct {
		name string
		docs []string
		want Variant
	}{
		{"current react components", []string{`{"dependencies": {"@abgov/react-components": "4.12.3"}}`}, ReactUIC},
		{"react components beat bare react", []string{`{"dependencies": {"react": "18.2.0", "@abgov/react-components": "^4.0.1"}}`}, ReactUIC},
		{"legacy react components", []string{`{"dependencies": {"@abgov/react-components": "3.9.0", "react": "17.0.2"}}`}, ReactUICOld},
		{"current angular components", []string{`{"dependencies": {"@abgov/angular-components": "2.4.1"}}`}, AngularUIC},
		{"legacy angular components", []string{`{"dependencies": {"@abgov/angular-components": "1.7.0"}}`}, AngularUICOld},
		{"web components with vue", []string{`{"dependencies": {"@abgov/web-components": "1.2.0", "vue": "3.4.0"}}`}, VueUIC},
		{"web components alone", []string{`{"dependencies": {"@abgov/web-components": "1.2.0"}}`}, WebComponentsUIC},
		{"legacy vue components", []string{`{"dependencies": {"@abgov/vue-components": "0.3.0", "vue": "2.6.0"}}`}, VueUICOld},
		{"bare react", []string{`{"dependencies": {"react-dom": "18.2.0"}}`}, React},
		{"bare angular", []string{`{"dependencies": {"@angular/core": "17.0.0"}}`}, Angular},
		{"bare vue", []string{`{"devDependencies": {"vue": "3.4.0"}}`}, Vue},
		{"nothing", []string{`{"dependencies": {"express": "4.18.0"}}`}, None},
		{"no manifests", nil, None},
		{"nested manifest counts", []string{
			`{"dependencies": {"express": "4.18.0"}}`,
			`{"devDependencies": {"@abgov/angular-components": "2.0.0"}}`,
		}, AngularUIC},
		{"any current version wins", []string{
			`{"dependencies": {"@abgov/react-components": "3.9.0"}}`,
			`{"dependencies": {"@abgov/react-components": "4.1.0"}}`,
		}, ReactUIC},
		{"react before angular", []string{
			`{"dependencies": {"@abgov/angular-components": "2.0.0"}}`,
			`{"dependencies": {"@abgov/react-components": "4.0.0"}}`,
		}, ReactUIC},
		{"current angular beats web components", []string{
			`{"dependencies": {"@abgov/web-components": "1.0.0", "@abgov/angular-components": "2.1.0"}}`,
		}, AngularUIC},
		{"web components beat legacy react", []string{
			`{"dependencies": {"@abgov/web-components": "1.0.0", "@abgov/react-components": "3.0.0"}}`,
		}, WebComponentsUIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(manifests(t, tt.docs...)); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_MajorBoundary(t *testing.T) {
	c := NewClassifier(DefaultDefinitions())
	for version, want := range map[string]Variant{
		"4.12.3":  ReactUIC,
		"^4.0.0":  ReactUIC,
		"3.9.0":   ReactUICOld,
		"14.0.0":  ReactUICOld,
		"5.0.0":   ReactUICOld,
		"latest":  ReactUICOld,
		"4.100.0": ReactUICOld,

		"workspace:^4.1.2":                  ReactUIC,
		"npm:@abgov/react-components@4.2.0": ReactUIC,
		"^3.0.0 || ^4.0.0":                  ReactUIC,
		">=4.0.0 <5.0.0":                    ReactUIC,
		"workspace:*":                       ReactUICOld,
		"^3.0.0 || ^14.0.0":                 ReactUICOld,
		"npm:@abgov/react-components@3.9.0": ReactUICOld,
	} {
		ms := manifests(t, `{"dependencies": {"@abgov/react-components": "`+version+`"}}`)
		if got := c.Classify(ms); got != want {
			t.Errorf("Classify(%s) = %v, want %v", version, got, want)
		}
	}
}

func TestClassify_NoPatternMeansLegacy(t *testing.T) {
	defs := DefaultDefinitions()
	defs.ReactComponents.Current = nil
	c := NewClassifier(defs)

	ms := manifests(t, `{"dependencies": {"@abgov/react-components": "4.12.3"}}`)
	if got := c.Classify(ms); got != ReactUICOld {
		t.Errorf("Classify() = %v, want %v", got, ReactUICOld)
	}
}

func TestRules_Order(t *testing.T) {
	var got []Variant
	for _, r := range NewClassifier(DefaultDefinitions()).Rules() {
		got = append(got, r.Variant)
	}
	want := Variants[:len(Variants)-1]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rule order = %v, want %v", got, want)
	}
}

func TestRules_Independent(t *testing.T) {
	c := NewClassifier(DefaultDefinitions())
	ms := manifests(t, `{"dependencies": {"@abgov/web-components": "1.0.0"}}`)

	matched := map[Variant]bool{}
	for _, r := range c.Rules() {
		matched[r.Variant] = r.Match(ms)
	}
	if matched[VueUIC] {
		t.Error("vue-uic rule matched without vue")
	}
	if !matched[WebComponentsUIC] {
		t.Error("wc-uic rule did not match")
	}
}

func TestVersions(t *testing.T) {
	c := NewClassifier(DefaultDefinitions())

	tests := []struct {
		name    string
		doc     string
		variant Variant
		want    []string
	}{
		{"angular current only", `{"dependencies": {"@abgov/angular-components": "2.4.1"}, "devDependencies": {"@abgov/angular-components": "1.0.0"}}`, AngularUIC, []string{"2.4.1"}},
		{"web components any version", `{"dependencies": {"@abgov/web-components": "^3.0.0"}}`, WebComponentsUIC, []string{"3.0.0"}},
		{"vue lineage pattern", `{"dependencies": {"@abgov/web-components": "1.5.2", "vue": "3.0.0"}}`, VueUIC, []string{"1.5.2"}},
		{"legacy reports nothing", `{"dependencies": {"@abgov/react-components": "3.0.0"}}`, ReactUICOld, []string{}},
		{"framework reports nothing", `{"dependencies": {"react": "18.0.0"}}`, React, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Versions(manifests(t, tt.doc), tt.variant)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Versions() = %v, want %v", got, tt.want)
			}
		})
	}
}
