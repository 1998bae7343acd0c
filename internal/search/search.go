// Package search implements the equivalence search over candidate corpora.
//
// Matching is textual: a symbol counts as present when its name occurs,
// case-insensitively, anywhere in a candidate file. That makes `add` match
// `addition`, a known false positive the coverage numbers are calibrated
// against. The Searcher interface is kept narrow so a stricter matcher can
// replace it without touching aggregation or reporting.
package search

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Target is one candidate-corpus root and the filename patterns searched
// beneath it, e.g. {Root: "include", Patterns: ["*.hpp"]}.
type Target struct {
	Root     string   `yaml:"root"`
	Patterns []string `yaml:"patterns"`
}

// Searcher reports whether a symbol name is textually present in the
// candidate corpus and, if so, where it was first seen. Traversal order
// across platforms is unspecified: when several files contain the name,
// callers must not depend on which location is reported.
type Searcher interface {
	Search(name string) (found bool, location string)
}

// Entry is one enumerated candidate file.
type Entry struct {
	// Path locates the file for reading.
	Path string
	// Location is the report-facing path, relative to the parent of the
	// target root so the root directory name stays visible.
	Location string
}

// Enumerate lists the candidate files of all targets, in target order,
// walking each root recursively. Missing roots contribute nothing;
// unreadable directories are skipped.
func Enumerate(targets []Target) []Entry {
	var entries []Entry
	for _, t := range targets {
		if _, err := os.Stat(t.Root); err != nil {
			continue
		}
		base := filepath.Dir(filepath.Clean(t.Root))
		_ = filepath.WalkDir(t.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(t.Root, path)
			if relErr != nil {
				return nil
			}
			if !matchesAny(t.Patterns, d.Name(), filepath.ToSlash(rel)) {
				return nil
			}
			loc := path
			if l, err := filepath.Rel(base, path); err == nil {
				loc = l
			}
			entries = append(entries, Entry{Path: path, Location: filepath.ToSlash(loc)})
			return nil
		})
	}
	return entries
}

// matchesAny matches a filename against the target patterns. Plain patterns
// ("*.hpp") match the base name, mirroring a recursive glob; patterns with a
// separator ("gen/**/*.cpp") match the root-relative path.
func matchesAny(patterns []string, name, rel string) bool {
	for _, p := range patterns {
		subject := name
		if strings.Contains(p, "/") {
			subject = rel
		}
		if ok, err := doublestar.Match(p, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// loadLowered reads a candidate file and lower-cases it for containment
// tests. Unreadable and undecodable files report ok=false and are skipped by
// the searchers: they count neither as a match nor as an error.
func loadLowered(path string) (string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(content) {
		return "", false
	}
	return strings.ToLower(string(content)), true
}
