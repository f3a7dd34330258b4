// Package scanner discovers shorthand source files (SPEC_FULL.md §4.8):
// given root paths, it walks directories recursively, keeps files with a
// .fsh extension, applies optional include/exclude glob filters, and
// returns them in deterministic lexicographic order so diagnostic
// ordering never depends on OS directory-iteration order.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const sourceExt = ".fsh"

// Config holds scanner configuration options.
type Config struct {
	IncludeGlobs []string
	ExcludeGlobs []string
}

// Scanner discovers .fsh files under a set of root paths.
type Scanner struct {
	includeGlobs []string
	excludeGlobs []string
}

// New creates a Scanner from cfg.
func New(cfg Config) *Scanner {
	return &Scanner{
		includeGlobs: cfg.IncludeGlobs,
		excludeGlobs: cfg.ExcludeGlobs,
	}
}

// ScanTargets walks each target (file or directory), returning the
// deduplicated, sorted set of discovered .fsh files as absolute paths.
func (s *Scanner) ScanTargets(ctx context.Context, targets []string) ([]string, error) {
	var all []string
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		files, err := s.scanTarget(target)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return dedupeSorted(all), nil
}

func (s *Scanner) scanTarget(target string) ([]string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if s.hasSourceExt(abs) && s.shouldInclude(abs) {
			return []string{abs}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != abs && shouldSkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if s.hasSourceExt(path) && s.shouldInclude(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scanner) hasSourceExt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), sourceExt)
}

func (s *Scanner) shouldInclude(path string) bool {
	base := filepath.Base(path)

	if len(s.includeGlobs) > 0 {
		matched := false
		for _, pattern := range s.includeGlobs {
			if globMatches(pattern, base) || globMatches(pattern, path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range s.excludeGlobs {
		if globMatches(pattern, base) || globMatches(pattern, path) {
			return false
		}
	}

	return true
}

func globMatches(pattern, path string) bool {
	ok, _ := doublestar.Match(pattern, path)
	return ok
}

func shouldSkipDir(name string) bool {
	switch name {
	case ".git", "vendor", "node_modules", "dist", "build":
		return true
	}
	return strings.HasPrefix(name, ".")
}

func dedupeSorted(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
