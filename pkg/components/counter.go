package components

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/uiadoption/pkg/library"
	"github.com/matzehuels/uiadoption/pkg/manifest"
)

// Counts holds per-component usage for one repository.
type Counts struct {
	// Elements has one entry per catalog name for counted variants and is
	// empty otherwise.
	Elements map[string]int
	// Total is the sum of Elements.
	Total int
	// Files is the number of source files scanned.
	Files int
}

// Counter walks a source tree and counts component usage.
type Counter struct {
	Matcher Matcher
	Logger  *log.Logger
}

// NewCounter creates a Counter. A nil matcher selects a LineMatcher.
func NewCounter(m Matcher, logger *log.Logger) *Counter {
	if m == nil {
		m = NewLineMatcher()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Counter{Matcher: m, Logger: logger}
}

// Count scans root for the file types of v and counts every catalog
// component. Variants that are not counted return empty Counts without
// touching the filesystem. Unreadable files are skipped; only context
// cancellation is returned as an error.
func (c *Counter) Count(ctx context.Context, root string, v library.Variant) (Counts, error) {
	counts := Counts{Elements: map[string]int{}}
	if !v.Counted() {
		return counts, nil
	}

	tags := make([]string, len(Catalog))
	for i, name := range Catalog {
		tags[i] = TagName(v, name)
		counts.Elements[name] = 0
	}
	exts := Extensions(v)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.Logger.Debug("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && manifest.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			c.Logger.Debug("skipping unreadable file", "path", path, "err", err)
			return nil
		}
		counts.Files++
		for i, name := range Catalog {
			counts.Elements[name] += c.Matcher.Count(content, tags[i])
		}
		return nil
	})
	if err != nil {
		return Counts{Elements: map[string]int{}}, err
	}

	for _, n := range counts.Elements {
		counts.Total += n
	}
	return counts, nil
}
