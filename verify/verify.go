package verify

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/portlint/portlint/formatter"
	"github.com/portlint/portlint/internal/artifact"
	"github.com/portlint/portlint/internal/coverage"
	"github.com/portlint/portlint/internal/search"
	"github.com/portlint/portlint/internal/symbol"
	"github.com/portlint/portlint/internal/types"
)

// Runner executes verification runs for one configuration.
type Runner struct {
	cfg       *Config
	logger    *zap.Logger
	extractor *symbol.Extractor
	progress  io.Writer
}

// NewRunner builds a runner. A nil logger falls back to a no-op logger.
func NewRunner(cfg *Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, extractor: symbol.New()}
}

// SetProgress directs index-build progress output to w. Progress is off by
// default so machine-readable output stays clean.
func (r *Runner) SetProgress(w io.Writer) {
	r.progress = w
}

// Run executes one extraction, search, aggregation and reporting pass and
// returns the structured outcome. Mapping the outcome to an exit code is the
// caller's job. The context is honored between modules; the module in flight
// is always finished.
func (r *Runner) Run(ctx context.Context) (types.Outcome, error) {
	modules, err := r.selectModules()
	if err != nil {
		return types.Outcome{}, err
	}

	searcher, err := r.searcher()
	if err != nil {
		return types.Outcome{}, err
	}

	var collected []types.ModuleResult
	for _, module := range modules {
		if err := ctx.Err(); err != nil {
			return types.Outcome{}, err
		}
		if result, ok := r.analyzeModule(searcher, module); ok {
			collected = append(collected, result)
		}
	}

	report := coverage.Build(collected)
	if err := artifact.Write(r.cfg.Artifacts, report); err != nil {
		return types.Outcome{}, err
	}

	outcome := types.Outcome{
		Pass:       report.Percentage() >= r.cfg.Threshold,
		Percentage: report.Percentage(),
		Report:     report,
		Artifacts:  []string{r.cfg.Artifacts.Functions, r.cfg.Artifacts.Classes},
	}
	outcome.Text = formatter.Render(report, r.RenderOptions())

	r.logger.Info("verification complete",
		zap.Float64("coverage", outcome.Percentage),
		zap.Bool("pass", outcome.Pass),
		zap.Int("missing", report.Missing()))
	return outcome, nil
}

// RenderOptions returns formatter options matching this runner's config.
func (r *Runner) RenderOptions() formatter.Options {
	return formatter.Options{
		Title:     r.cfg.Title,
		Threshold: r.cfg.Threshold,
		Artifacts: []string{r.cfg.Artifacts.Functions, r.cfg.Artifacts.Classes},
	}
}

// analyzeModule extracts one module's symbols and matches them against the
// candidate corpus. The boolean is false for modules the reference tree no
// longer ships, which are skipped; unreadable ones come back as module
// errors. Neither case aborts the run.
func (r *Runner) analyzeModule(searcher search.Searcher, module string) (types.ModuleResult, bool) {
	path := filepath.Join(r.cfg.Reference.Root, module)
	if _, err := os.Stat(path); err != nil {
		r.logger.Warn("reference module not found",
			zap.String("module", module),
			zap.Error(err))
		return types.ModuleResult{}, false
	}

	analysis := r.extractor.File(path, module)
	if analysis.Err != "" {
		r.logger.Warn("reference module unreadable",
			zap.String("module", module),
			zap.String("error", analysis.Err))
		return types.ModuleResult{Module: module, Err: analysis.Err}, true
	}

	results := make([]types.MatchResult, 0, len(analysis.Symbols))
	for _, sym := range analysis.Functions() {
		results = append(results, matchSymbol(searcher, sym))
	}
	for _, sym := range analysis.Classes() {
		results = append(results, matchSymbol(searcher, sym))
	}

	r.logger.Debug("module analyzed",
		zap.String("module", module),
		zap.Int("functions", len(analysis.Functions())),
		zap.Int("classes", len(analysis.Classes())))
	return types.ModuleResult{Module: module, Results: results}, true
}

func matchSymbol(searcher search.Searcher, sym types.Symbol) types.MatchResult {
	found, location := searcher.Search(sym.Name)
	if !found {
		location = types.NotFound
	}
	return types.MatchResult{Symbol: sym, Found: found, Location: location}
}

// selectModules merges the explicit module list with discovery results.
func (r *Runner) selectModules() ([]string, error) {
	modules := append([]string(nil), r.cfg.Reference.Modules...)
	if !r.cfg.Reference.Discover.Enabled {
		return modules, nil
	}

	discovered, err := r.discoverModules()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		seen[m] = true
	}
	for _, m := range discovered {
		if !seen[m] {
			modules = append(modules, m)
		}
	}
	return modules, nil
}

// discoverModules recursively scans the discovery directory under the
// reference root and picks up to Limit files matching the discovery pattern
// and none of the exclude patterns. Module names are kept relative to the
// reference root; the lexical walk order keeps discovery deterministic. An
// absent discovery directory contributes no modules and does not abort the
// run.
func (r *Runner) discoverModules() ([]string, error) {
	rule := r.cfg.Reference.Discover
	root := filepath.Join(r.cfg.Reference.Root, rule.Dir)
	if _, err := os.Stat(root); err != nil {
		r.logger.Warn("discovery dir not found",
			zap.String("dir", root),
			zap.Error(err))
		return nil, nil
	}

	var modules []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if len(modules) == rule.Limit {
			return fs.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if ok, _ := doublestar.Match(rule.Pattern, name); !ok {
			return nil
		}
		if excludedName(rule.Exclude, name) {
			return nil
		}
		rel, relErr := filepath.Rel(r.cfg.Reference.Root, path)
		if relErr != nil {
			return relErr
		}
		modules = append(modules, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan discovery dir: %w", err)
	}

	r.logger.Debug("modules discovered",
		zap.String("dir", root),
		zap.Int("count", len(modules)))
	return modules, nil
}

func excludedName(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (r *Runner) searcher() (search.Searcher, error) {
	if r.cfg.Search.Index {
		index := search.BuildIndex(r.cfg.Candidates, r.progress)
		r.logger.Debug("candidate index built", zap.Int("files", index.Len()))
		return index, nil
	}
	return search.NewScanner(r.cfg.Candidates, r.cfg.Search.CacheSize)
}
