// Package coverage folds per-module match results into a single report.
package coverage

import "github.com/portlint/portlint/internal/types"

// Accumulator builds a CoverageReport incrementally, one reference module at
// a time. Modules are kept in the order they are added, and missing symbols
// are recorded per occurrence without deduplication.
type Accumulator struct {
	report types.CoverageReport
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		report: types.CoverageReport{
			MissingFunctions: []types.MissingItem{},
			MissingClasses:   []types.MissingItem{},
		},
	}
}

// AddModuleError records a module whose source could not be read. It appears
// in the report but contributes nothing to the totals.
func (a *Accumulator) AddModuleError(module, errText string) {
	a.report.Modules = append(a.report.Modules, types.ModuleResult{
		Module: module,
		Err:    errText,
	})
}

// AddModule records the search results for one module's symbols, in source
// order.
func (a *Accumulator) AddModule(module string, results []types.MatchResult) {
	a.report.Modules = append(a.report.Modules, types.ModuleResult{
		Module:  module,
		Results: results,
	})
	for _, r := range results {
		switch r.Symbol.Kind {
		case types.KindFunction:
			a.report.TotalFunctions++
			if r.Found {
				a.report.ImplementedFunctions++
			} else {
				a.report.MissingFunctions = append(a.report.MissingFunctions, types.MissingItem{
					Name:   r.Symbol.Name,
					Module: module,
				})
			}
		case types.KindClass:
			a.report.TotalClasses++
			if r.Found {
				a.report.ImplementedClasses++
			} else {
				a.report.MissingClasses = append(a.report.MissingClasses, types.MissingItem{
					Name:   r.Symbol.Name,
					Module: module,
				})
			}
		}
	}
}

// Report returns the accumulated coverage.
func (a *Accumulator) Report() types.CoverageReport {
	return a.report
}

// Build folds already-collected module results in order.
func Build(modules []types.ModuleResult) types.CoverageReport {
	acc := NewAccumulator()
	for _, m := range modules {
		if m.Err != "" {
			acc.AddModuleError(m.Module, m.Err)
			continue
		}
		acc.AddModule(m.Module, m.Results)
	}
	return acc.Report()
}
