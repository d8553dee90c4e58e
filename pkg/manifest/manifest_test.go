package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseBytes_KeepsDeclarationOrder(t *testing.T) {
	data := []byte(`{
  "name": "portal",
  "dependencies": {
    "zod": "^3.0.0",
    "@abgov/react-components": "4.12.3",
    "axios": "1.6.0"
  },
  "devDependencies": {
    "vitest": "^1.0.0"
  }
}`)

	m, err := ParseBytes("package.json", data)
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if m.Name != "portal" {
		t.Errorf("Name = %q, want %q", m.Name, "portal")
	}

	var names []string
	for _, d := range m.All() {
		names = append(names, d.Name)
	}
	want := []string{"zod", "@abgov/react-components", "axios", "vitest"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("All() names = %v, want %v", names, want)
	}

	if v, ok := m.Dependencies.Lookup("axios"); !ok || v != "1.6.0" {
		t.Errorf("Lookup(axios) = %q, %v", v, ok)
	}
	if _, ok := m.DevDependencies.Lookup("axios"); ok {
		t.Error("Lookup(axios) in devDependencies = true, want false")
	}
}

func TestParseBytes_NonStringVersion(t *testing.T) {
	m, err := ParseBytes("package.json", []byte(`{"dependencies": {"local": {"path": "../lib"}, "react": "18.2.0"}}`))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if got := m.Dependencies.Map()["local"]; got != `{"path": "../lib"}` {
		t.Errorf("raw version = %q", got)
	}
}

func TestParseBytes_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"dependencies": `},
		{"trailing garbage", `{"name": "x"} }`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBytes("package.json", []byte(tt.data)); err == nil {
				t.Error("ParseBytes() error = nil, want error")
			}
		})
	}
}

func TestParseBytes_UnexpectedShapes(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantName string
		wantDeps []string
	}{
		{"numeric name", `{"name": 123, "dependencies": {"@abgov/react-components": "4.1.0"}}`, "", []string{"@abgov/react-components"}},
		{"object name", `{"name": {"x": 1}, "devDependencies": {"vue": "3.4.0"}}`, "", []string{"vue"}},
		{"dependencies array", `{"name": "x", "dependencies": ["react"], "devDependencies": {"vue": "3.4.0"}}`, "x", []string{"vue"}},
		{"dependencies string", `{"name": "x", "dependencies": "react", "devDependencies": {"vue": "3.4.0"}}`, "x", []string{"vue"}},
		{"dependencies number", `{"dependencies": 1}`, "", nil},
		{"document array", `[]`, "", nil},
		{"document string", `"package"`, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseBytes("package.json", []byte(tt.data))
			if err != nil {
				t.Fatalf("ParseBytes() error = %v, want nil", err)
			}
			if m.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", m.Name, tt.wantName)
			}
			var names []string
			for _, d := range m.All() {
				names = append(names, d.Name)
			}
			if !reflect.DeepEqual(names, tt.wantDeps) {
				t.Errorf("All() names = %v, want %v", names, tt.wantDeps)
			}
		})
	}
}

func TestLoad_KeepsOddlyShapedManifests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": 123, "dependencies": {"@abgov/react-components": "4.1.0"}}`)

	res := Load(root)
	if len(res.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", res.Skipped)
	}
	if len(res.Manifests) != 1 {
		t.Fatalf("Manifests = %d, want 1", len(res.Manifests))
	}
	if v, ok := res.Manifests[0].Dependencies.Lookup("@abgov/react-components"); !ok || v != "4.1.0" {
		t.Errorf("Lookup() = %q, %v", v, ok)
	}
}

func TestParseBytes_NullSections(t *testing.T) {
	m, err := ParseBytes("package.json", []byte(`{"name": "x", "dependencies": null}`))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if len(m.All()) != 0 {
		t.Errorf("All() = %v, want empty", m.All())
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": "root", "dependencies": {"react": "18.2.0"}}`)
	writeFile(t, filepath.Join(root, "apps", "web", "package.json"), `{"name": "web", "dependencies": {"@abgov/react-components": "4.1.0"}}`)
	writeFile(t, filepath.Join(root, "apps", "broken", "package.json"), `{"name": `)
	writeFile(t, filepath.Join(root, "node_modules", "react", "package.json"), `{"name": "react"}`)
	writeFile(t, filepath.Join(root, "apps", "web", "node_modules", "x", "package.json"), `{"name": "x"}`)
	writeFile(t, filepath.Join(root, "Package.json"), `{"name": "wrong-case"}`)

	res := Load(root)

	var names []string
	for _, m := range res.Manifests {
		names = append(names, m.Name)
	}
	want := []string{"web", "root"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("manifest names = %v, want %v", names, want)
	}

	if len(res.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want 1 entry", res.Skipped)
	}
	if got := res.Skipped[0].Path; got != filepath.Join(root, "apps", "broken", "package.json") {
		t.Errorf("Skipped path = %q", got)
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	res := Load(filepath.Join(t.TempDir(), "missing"))
	if len(res.Manifests) != 0 {
		t.Errorf("Manifests = %v, want none", res.Manifests)
	}
	if len(res.Skipped) != 1 {
		t.Errorf("Skipped = %v, want the root", res.Skipped)
	}
}

func TestSkipDir(t *testing.T) {
	for name, want := range map[string]bool{"node_modules": true, ".git": true, "src": false} {
		if got := SkipDir(name); got != want {
			t.Errorf("SkipDir(%q) = %v, want %v", name, got, want)
		}
	}
}
