// Package manifest loads package.json manifests from a repository checkout.
//
// # Overview
//
// A repository may hold any number of package.json files (monorepos, example
// apps, nested workspaces). [Load] walks a checkout, parses every manifest it
// finds outside node_modules and returns them in walk order. A manifest that
// cannot be read or parsed never aborts the walk: it is reported in
// [LoadResult.Skipped] and left out of [LoadResult.Manifests].
//
// Dependency sections keep their declaration order so that [Versions]
// returns versions in the order they appear in each file.
//
// # Usage
//
//	res := manifest.Load(checkoutDir)
//	for _, s := range res.Skipped {
//	    logger.Debug("skipped manifest", "path", s.Path, "err", s.Err)
//	}
//	versions := manifest.Versions(res.Manifests, "@abgov/react-components", nil)
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the manifest file name searched for in a checkout.
const FileName = "package.json"

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// SkipDir reports whether a directory with the given base name is excluded
// from manifest and source scans.
func SkipDir(name string) bool { return skipDirs[name] }

// Dep is a single declared dependency.
type Dep struct {
	Name    string
	Version string
}

// Deps is a dependency section in declaration order.
type Deps []Dep

// Lookup returns the declared version of name.
func (d Deps) Lookup(name string) (string, bool) {
	for _, dep := range d {
		if dep.Name == name {
			return dep.Version, true
		}
	}
	return "", false
}

// Map returns the section as a map. Later duplicates win, as with encoding/json.
func (d Deps) Map() map[string]string {
	m := make(map[string]string, len(d))
	for _, dep := range d {
		m[dep.Name] = dep.Version
	}
	return m
}

// UnmarshalJSON decodes a JSON object into d keeping key order. Values that
// are not strings (workspace objects, numbers) are kept as their raw JSON text.
// A section that is not an object (an array, a string) decodes as empty.
func (d *Deps) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		*d = nil
		return nil
	}

	var out Deps
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("dependencies: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var version string
		if err := json.Unmarshal(raw, &version); err != nil {
			version = string(raw)
		}
		out = append(out, Dep{Name: key, Version: version})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

// Manifest is one parsed package.json.
type Manifest struct {
	Path            string `json:"-"`
	Name            string `json:"name"`
	Dependencies    Deps   `json:"dependencies"`
	DevDependencies Deps   `json:"devDependencies"`
}

// All returns dependencies followed by devDependencies.
func (m Manifest) All() Deps {
	all := make(Deps, 0, len(m.Dependencies)+len(m.DevDependencies))
	all = append(all, m.Dependencies...)
	return append(all, m.DevDependencies...)
}

// Skipped records a manifest that could not be loaded.
type Skipped struct {
	Path string
	Err  error
}

// LoadResult holds the manifests found under a root and those that were skipped.
type LoadResult struct {
	Manifests []Manifest
	Skipped   []Skipped
}

// Parse reads and parses a single manifest file.
func Parse(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return ParseBytes(path, data)
}

// rawManifest is the decoding shape of a package.json.
type rawManifest struct {
	Name            json.RawMessage `json:"name"`
	Dependencies    Deps            `json:"dependencies"`
	DevDependencies Deps            `json:"devDependencies"`
}

// ParseBytes parses manifest content read from path. Only syntactically
// invalid JSON is an error: a document that is not an object, a non-string
// name or a dependency section of the wrong type yields empty fields.
func ParseBytes(path string, data []byte) (Manifest, error) {
	m := Manifest{Path: path}
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = fmt.Errorf("invalid JSON")
		}
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return m, nil
	}

	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(raw.Name) > 0 {
		var name string
		if json.Unmarshal(raw.Name, &name) == nil {
			m.Name = name
		}
	}
	m.Dependencies = raw.Dependencies
	m.DevDependencies = raw.DevDependencies
	return m, nil
}

// Load finds and parses every package.json under root, skipping node_modules.
// It never fails: unreadable entries and malformed manifests are reported in
// the Skipped list.
func Load(root string) LoadResult {
	var res LoadResult
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Path: path, Err: err})
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != FileName {
			return nil
		}
		m, err := Parse(path)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Path: path, Err: err})
			return nil
		}
		res.Manifests = append(res.Manifests, m)
		return nil
	})
	return res
}
