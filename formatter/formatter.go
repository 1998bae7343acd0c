// Package formatter renders coverage reports for terminals and CI consumers.
package formatter

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/portlint/portlint/internal/types"
)

// DefaultTitle is the report heading used when the config does not set one.
const DefaultTitle = "Migration Functionality Verification"

const sectionRuleWidth = 50

var (
	titleStyle   = color.New(color.FgCyan, color.Bold)
	sectionStyle = color.New(color.FgCyan)
	moduleStyle  = color.New(color.FgHiMagenta, color.Bold)
	foundStyle   = color.New(color.FgGreen)
	missingStyle = color.New(color.FgRed, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
	summaryStyle = color.New(color.FgWhite, color.Bold)
	passStyle    = color.New(color.FgGreen, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
)

// Options control report rendering.
type Options struct {
	Title     string    // heading; DefaultTitle when empty
	Threshold float64   // pass mark in percent
	Timestamp time.Time // header time; the zero value means now
	Artifacts []string  // artifact paths echoed in the JSON payload
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

func (o Options) at() time.Time {
	if o.Timestamp.IsZero() {
		return time.Now()
	}
	return o.Timestamp
}

// Render produces the human-readable report: a heading, one section per
// analyzed module with a line per symbol, and a summary with the coverage
// percentage and the verdict against the threshold.
func Render(report types.CoverageReport, opts Options) string {
	var b strings.Builder

	b.WriteString(titleStyle.Sprintf("=== %s ===\n", opts.title()))
	b.WriteString(fmt.Sprintf("%s\n", opts.at().Format("2006-01-02 15:04:05")))

	b.WriteString(sectionStyle.Sprint("\n## Module Analysis\n"))
	b.WriteString(sectionStyle.Sprintf("%s\n", strings.Repeat("=", sectionRuleWidth)))

	for _, module := range report.Modules {
		writeModule(&b, module)
	}

	b.WriteString(sectionStyle.Sprint("\n## Summary\n"))
	b.WriteString(sectionStyle.Sprintf("%s\n", strings.Repeat("=", sectionRuleWidth)))
	b.WriteString(summaryStyle.Sprintf("Functions: %d/%d implemented\n", report.ImplementedFunctions, report.TotalFunctions))
	b.WriteString(summaryStyle.Sprintf("Classes: %d/%d implemented\n", report.ImplementedClasses, report.TotalClasses))
	b.WriteString(summaryStyle.Sprintf("Overall: %d/%d\n", report.Implemented(), report.Total()))

	b.WriteString(fmt.Sprintf("\n📊 Coverage: %.1f%%\n", report.Percentage()))
	b.WriteString(fmt.Sprintf("📋 Missing items: %d\n", report.Missing()))

	if report.Percentage() >= opts.Threshold {
		b.WriteString(passStyle.Sprint("\n🎉 High confidence: most reference functionality is implemented.\n"))
	} else {
		b.WriteString(warningStyle.Sprint("\n⚠️  Some significant functionality may be missing.\n"))
	}

	return b.String()
}

func writeModule(b *strings.Builder, module types.ModuleResult) {
	b.WriteString(moduleStyle.Sprintf("\n### Analyzing %s\n", module.Module))

	if module.Err != "" {
		b.WriteString(errorStyle.Sprintf("❌ Error analyzing %s: %s\n", module.Module, module.Err))
		return
	}

	functions := byKind(module.Results, types.KindFunction)
	classes := byKind(module.Results, types.KindClass)
	b.WriteString(fmt.Sprintf("Found %d functions and %d classes\n", len(functions), len(classes)))

	for _, r := range functions {
		writeMatch(b, "Function", r)
	}
	for _, r := range classes {
		writeMatch(b, "Class", r)
	}
}

func writeMatch(b *strings.Builder, label string, r types.MatchResult) {
	if r.Found {
		b.WriteString(fmt.Sprintf("  %s '%s': %s Found in %s\n", label, r.Symbol.Name, foundStyle.Sprint("✅"), r.Location))
		return
	}
	b.WriteString(fmt.Sprintf("  %s '%s': %s\n", label, r.Symbol.Name, missingStyle.Sprintf("❌ %s", types.NotFound)))
}

func byKind(results []types.MatchResult, kind types.SymbolKind) []types.MatchResult {
	var out []types.MatchResult
	for _, r := range results {
		if r.Symbol.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type jsonPayload struct {
	GeneratedAt string  `json:"generated_at"`
	Threshold   float64 `json:"threshold"`
	Coverage    float64 `json:"coverage"`
	Pass        bool    `json:"pass"`
	types.CoverageReport
	Artifacts []string `json:"artifacts,omitempty"`
}

// RenderJSON produces the machine-readable report for CI pipelines. The
// coverage value is rounded to one decimal, matching the console output.
func RenderJSON(outcome types.Outcome, opts Options) (string, error) {
	payload := jsonPayload{
		GeneratedAt:    opts.at().UTC().Format(time.RFC3339),
		Threshold:      opts.Threshold,
		Coverage:       math.Round(outcome.Percentage*10) / 10,
		Pass:           outcome.Pass,
		CoverageReport: outcome.Report,
		Artifacts:      opts.Artifacts,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data), nil
}
