package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portlint/portlint/internal/types"
)

func init() {
	color.NoColor = true
}

func sampleReport() types.CoverageReport {
	return types.CoverageReport{
		TotalFunctions:       2,
		ImplementedFunctions: 1,
		TotalClasses:         1,
		ImplementedClasses:   1,
		Modules: []types.ModuleResult{
			{
				Module: "activations.py",
				Results: []types.MatchResult{
					{
						Symbol:   types.Symbol{Name: "sigmoid", Kind: types.KindFunction, Module: "activations.py"},
						Found:    true,
						Location: "cpp/include/activations.hpp",
					},
					{
						Symbol:   types.Symbol{Name: "softplus", Kind: types.KindFunction, Module: "activations.py"},
						Found:    false,
						Location: types.NotFound,
					},
					{
						Symbol:   types.Symbol{Name: "Softmax", Kind: types.KindClass, Module: "activations.py"},
						Found:    true,
						Location: "cpp/src/softmax.cpp",
					},
				},
			},
			{
				Module: "ghost.py",
				Err:    "open ghost.py: no such file or directory",
			},
		},
		MissingFunctions: []types.MissingItem{{Name: "softplus", Module: "activations.py"}},
		MissingClasses:   []types.MissingItem{},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	opts := Options{
		Threshold: 90,
		Timestamp: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	rule := strings.Repeat("=", 50)
	expected := strings.Join([]string{
		"=== Migration Functionality Verification ===",
		"2025-03-14 09:30:00",
		"",
		"## Module Analysis",
		rule,
		"",
		"### Analyzing activations.py",
		"Found 2 functions and 1 classes",
		"  Function 'sigmoid': ✅ Found in cpp/include/activations.hpp",
		"  Function 'softplus': ❌ NOT FOUND",
		"  Class 'Softmax': ✅ Found in cpp/src/softmax.cpp",
		"",
		"### Analyzing ghost.py",
		"❌ Error analyzing ghost.py: open ghost.py: no such file or directory",
		"",
		"## Summary",
		rule,
		"Functions: 1/2 implemented",
		"Classes: 1/1 implemented",
		"Overall: 2/3",
		"",
		"📊 Coverage: 66.7%",
		"📋 Missing items: 1",
		"",
		"⚠️  Some significant functionality may be missing.",
		"",
	}, "\n")

	assert.Equal(t, expected, Render(sampleReport(), opts), "rendered report does not match expected")
}

func TestRenderPassVerdict(t *testing.T) {
	t.Parallel()
	out := Render(sampleReport(), Options{Threshold: 50})
	assert.Contains(t, out, "🎉 High confidence")
	assert.NotContains(t, out, "⚠️")
}

func TestRenderCustomTitle(t *testing.T) {
	t.Parallel()
	out := Render(types.CoverageReport{}, Options{Title: "Port Audit"})
	assert.Contains(t, out, "=== Port Audit ===")
}

func TestRenderEmptyReportPasses(t *testing.T) {
	t.Parallel()
	out := Render(types.CoverageReport{}, Options{Threshold: 90})
	assert.Contains(t, out, "Overall: 0/0")
	assert.Contains(t, out, "📊 Coverage: 100.0%")
	assert.Contains(t, out, "🎉 High confidence")
}

func TestRenderOrdersFunctionsBeforeClasses(t *testing.T) {
	t.Parallel()
	report := types.CoverageReport{
		TotalFunctions:       1,
		ImplementedFunctions: 1,
		TotalClasses:         1,
		ImplementedClasses:   1,
		Modules: []types.ModuleResult{
			{
				Module: "node.py",
				Results: []types.MatchResult{
					{
						Symbol:   types.Symbol{Name: "Node", Kind: types.KindClass, Module: "node.py"},
						Found:    true,
						Location: "cpp/include/node.hpp",
					},
					{
						Symbol:   types.Symbol{Name: "link", Kind: types.KindFunction, Module: "node.py"},
						Found:    true,
						Location: "cpp/src/ops.cpp",
					},
				},
			},
		},
	}

	out := Render(report, Options{Threshold: 50})
	assert.Less(t, strings.Index(out, "Function 'link'"), strings.Index(out, "Class 'Node'"))
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()
	report := sampleReport()
	outcome := types.Outcome{
		Pass:       false,
		Percentage: report.Percentage(),
		Report:     report,
	}
	opts := Options{
		Threshold: 90,
		Timestamp: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Artifacts: []string{"missing_functions.json", "missing_classes.json"},
	}

	out, err := RenderJSON(outcome, opts)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "2025-03-14T09:30:00Z", payload["generated_at"])
	assert.Equal(t, 90.0, payload["threshold"])
	assert.Equal(t, 66.7, payload["coverage"])
	assert.Equal(t, false, payload["pass"])
	assert.Equal(t, 2.0, payload["total_functions"])
	assert.Equal(t, []any{"missing_functions.json", "missing_classes.json"}, payload["artifacts"])

	missing, ok := payload["missing_classes"].([]any)
	require.True(t, ok, "missing_classes must serialize as an array")
	assert.Empty(t, missing)
}
