// Package artifact persists the missing-symbol lists a verification run
// produces as JSON files, replacing whatever a previous run left behind.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/portlint/portlint/internal/types"
)

const (
	DefaultFunctionsFile = "missing_functions.json"
	DefaultClassesFile   = "missing_classes.json"
)

// Paths names the files a run writes.
type Paths struct {
	Functions string `yaml:"functions"`
	Classes   string `yaml:"classes"`
}

// DefaultPaths returns the historical artifact names in the working directory.
func DefaultPaths() Paths {
	return Paths{
		Functions: DefaultFunctionsFile,
		Classes:   DefaultClassesFile,
	}
}

// Write stores both missing lists from the report. Each file holds a JSON
// array of {name, module} objects; an empty list is written as [].
func Write(paths Paths, report types.CoverageReport) error {
	if err := writeList(paths.Functions, report.MissingFunctions); err != nil {
		return fmt.Errorf("failed to write %s: %w", paths.Functions, err)
	}
	if err := writeList(paths.Classes, report.MissingClasses); err != nil {
		return fmt.Errorf("failed to write %s: %w", paths.Classes, err)
	}
	return nil
}

func writeList(path string, items []types.MissingItem) error {
	if items == nil {
		items = []types.MissingItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadList loads a previously written artifact file.
func ReadList(path string) ([]types.MissingItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var items []types.MissingItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return items, nil
}
