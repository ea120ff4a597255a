package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// defaultInclude matches the text formats ingest picks up from directories.
var defaultInclude = []string{"*.txt", "*.md", "*.markdown", "*.rst", "*.org", "*.html", "*.htm"}

// pathFilter selects files by glob. Patterns are matched against both the
// slash-separated path relative to the walk root and the base name, so
// "*.md" and "notes/**.md" both work.
type pathFilter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func newPathFilter(include, exclude []string) (*pathFilter, error) {
	if len(include) == 0 {
		include = defaultInclude
	}
	f := &pathFilter{}
	for _, p := range include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether rel (relative to the walk root) should be ingested.
func (f *pathFilter) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := rel[strings.LastIndex(rel, "/")+1:]

	for _, g := range f.exclude {
		if g.Match(rel) || g.Match(base) {
			return false
		}
	}
	for _, g := range f.include {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// skipDir reports whether a directory should not be descended into.
func (f *pathFilter) skipDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := rel[strings.LastIndex(rel, "/")+1:]
	if rel != "." && strings.HasPrefix(base, ".") {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
