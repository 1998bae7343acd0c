package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/portlint/portlint/internal/types"
)

func match(module, name string, kind types.SymbolKind, found bool) types.MatchResult {
	r := types.MatchResult{
		Symbol: types.Symbol{Name: name, Kind: kind, Module: module},
		Found:  found,
	}
	if found {
		r.Location = "cpp/src/" + name + ".cpp"
	} else {
		r.Location = types.NotFound
	}
	return r
}

func TestAccumulatorCounts(t *testing.T) {
	t.Parallel()
	acc := NewAccumulator()
	acc.AddModule("activations", []types.MatchResult{
		match("activations", "sigmoid", types.KindFunction, true),
		match("activations", "softplus", types.KindFunction, false),
		match("activations", "Softmax", types.KindClass, true),
	})
	acc.AddModule("node", []types.MatchResult{
		match("node", "Node", types.KindClass, false),
	})

	report := acc.Report()
	assert.Equal(t, 2, report.TotalFunctions)
	assert.Equal(t, 1, report.ImplementedFunctions)
	assert.Equal(t, 2, report.TotalClasses)
	assert.Equal(t, 1, report.ImplementedClasses)
	assert.Equal(t, []types.MissingItem{{Name: "softplus", Module: "activations"}}, report.MissingFunctions)
	assert.Equal(t, []types.MissingItem{{Name: "Node", Module: "node"}}, report.MissingClasses)
	assert.InDelta(t, 50.0, report.Percentage(), 1e-9)
}

func TestAccumulatorKeepsModuleOrder(t *testing.T) {
	t.Parallel()
	acc := NewAccumulator()
	acc.AddModule("zeta", nil)
	acc.AddModule("alpha", nil)
	acc.AddModuleError("mid", "open mid.py: no such file or directory")

	report := acc.Report()
	var names []string
	for _, m := range report.Modules {
		names = append(names, m.Module)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestAccumulatorDoesNotDeduplicateMissing(t *testing.T) {
	t.Parallel()
	acc := NewAccumulator()
	acc.AddModule("ops", []types.MatchResult{
		match("ops", "reset", types.KindFunction, false),
	})
	acc.AddModule("model", []types.MatchResult{
		match("model", "reset", types.KindFunction, false),
	})

	report := acc.Report()
	assert.Equal(t, []types.MissingItem{
		{Name: "reset", Module: "ops"},
		{Name: "reset", Module: "model"},
	}, report.MissingFunctions)
}

func TestAccumulatorModuleError(t *testing.T) {
	t.Parallel()
	acc := NewAccumulator()
	acc.AddModuleError("ghost", "invalid utf-8 encoding")

	report := acc.Report()
	assert.Equal(t, 0, report.Total())
	assert.InDelta(t, 100.0, report.Percentage(), 1e-9)
	assert.Len(t, report.Modules, 1)
	assert.Equal(t, "invalid utf-8 encoding", report.Modules[0].Err)
	assert.Empty(t, report.Modules[0].Results)
}

func TestAccumulatorEmptyMissingListsAreNonNil(t *testing.T) {
	t.Parallel()
	report := NewAccumulator().Report()
	assert.NotNil(t, report.MissingFunctions)
	assert.NotNil(t, report.MissingClasses)
	assert.Empty(t, report.MissingFunctions)
	assert.Empty(t, report.MissingClasses)
}

func TestBuildMatchesAccumulator(t *testing.T) {
	t.Parallel()
	modules := []types.ModuleResult{
		{Module: "activations", Results: []types.MatchResult{
			match("activations", "sigmoid", types.KindFunction, true),
		}},
		{Module: "ghost", Err: "no such file"},
		{Module: "node", Results: []types.MatchResult{
			match("node", "Node", types.KindClass, false),
		}},
	}

	acc := NewAccumulator()
	for _, m := range modules {
		if m.Err != "" {
			acc.AddModuleError(m.Module, m.Err)
			continue
		}
		acc.AddModule(m.Module, m.Results)
	}
	assert.Equal(t, acc.Report(), Build(modules))
}
