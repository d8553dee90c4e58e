package components

import (
	"bytes"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Matcher counts usages of a tag in the content of one source file.
type Matcher interface {
	Count(content []byte, tag string) int
}

// patternCacheSize bounds the compiled tag patterns kept by a LineMatcher.
// Two spellings per catalog entry comfortably fit.
const patternCacheSize = 128

// LineMatcher counts lines containing an opening tag: "<" + tag followed by a
// space or ">". Several usages on one line count once, and a tag whose
// attributes start on the next line is not counted. Both are known
// limitations kept for compatibility with earlier reports.
type LineMatcher struct {
	patterns *lru.Cache[string, *regexp.Regexp]
}

// NewLineMatcher creates a LineMatcher with a bounded pattern cache.
func NewLineMatcher() *LineMatcher {
	c, _ := lru.New[string, *regexp.Regexp](patternCacheSize)
	return &LineMatcher{patterns: c}
}

// Count returns the number of lines in content that open tag. Lines have no
// length limit, so minified bundles are counted in full.
func (m *LineMatcher) Count(content []byte, tag string) int {
	if tag == "" || !bytes.Contains(content, []byte("<"+tag)) {
		return 0
	}
	re := m.pattern(tag)

	n := 0
	for len(content) > 0 {
		line := content
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			content = nil
		}
		if re.Match(line) {
			n++
		}
	}
	return n
}

func (m *LineMatcher) pattern(tag string) *regexp.Regexp {
	if m.patterns == nil {
		return compileTag(tag)
	}
	if re, ok := m.patterns.Get(tag); ok {
		return re
	}
	re := compileTag(tag)
	m.patterns.Add(tag, re)
	return re
}

func compileTag(tag string) *regexp.Regexp {
	return regexp.MustCompile("<" + regexp.QuoteMeta(tag) + "[ >]")
}

var _ Matcher = (*LineMatcher)(nil)
