package search

import (
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// Index holds the whole candidate corpus, lower-cased, in enumeration order.
// It trades one full corpus read at construction for containment-only
// searches afterwards. Match semantics are identical to Scanner: first
// textual containment, case-insensitive, in the same file order.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	location string
	content  string
}

// BuildIndex enumerates and reads all candidate files once. When progress is
// non-nil a bar is rendered to it while files are read. Unreadable and
// undecodable files are skipped, exactly as the scanner skips them.
func BuildIndex(targets []Target, progress io.Writer) *Index {
	files := Enumerate(targets)

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("indexing candidates"),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	idx := &Index{entries: make([]indexEntry, 0, len(files))}
	for _, entry := range files {
		if bar != nil {
			_ = bar.Add(1)
		}
		content, ok := loadLowered(entry.Path)
		if !ok {
			continue
		}
		idx.entries = append(idx.entries, indexEntry{location: entry.Location, content: content})
	}
	return idx
}

// Len returns the number of indexed files.
func (x *Index) Len() int {
	return len(x.entries)
}

// Search reports the first indexed file containing name, case-insensitively.
func (x *Index) Search(name string) (bool, string) {
	needle := strings.ToLower(name)
	for _, entry := range x.entries {
		if strings.Contains(entry.content, needle) {
			return true, entry.location
		}
	}
	return false, ""
}
