package search

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the scanner's lowered-content cache.
const DefaultCacheSize = 256

// Scanner is the baseline searcher: every Search re-walks the targets and
// tests each candidate file until the first containment. File contents are
// memoized in a bounded LRU so repeated per-symbol scans do not re-read the
// same files within a run; the walk itself is repeated so match order stays
// exactly that of an uncached scan.
type Scanner struct {
	targets []Target
	cache   *lru.Cache[string, string]
}

// NewScanner returns a scanner over the given targets. cacheSize <= 0 falls
// back to DefaultCacheSize.
func NewScanner(targets []Target, cacheSize int) (*Scanner, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{targets: targets, cache: cache}, nil
}

// Search walks the candidate corpus and reports the first file containing
// name, case-insensitively.
func (s *Scanner) Search(name string) (bool, string) {
	needle := strings.ToLower(name)
	for _, entry := range Enumerate(s.targets) {
		content, ok := s.contents(entry.Path)
		if !ok {
			continue
		}
		if strings.Contains(content, needle) {
			return true, entry.Location
		}
	}
	return false, ""
}

func (s *Scanner) contents(path string) (string, bool) {
	if content, ok := s.cache.Get(path); ok {
		return content, true
	}
	content, ok := loadLowered(path)
	if !ok {
		return "", false
	}
	s.cache.Add(path, content)
	return content, true
}
