// Package symbol extracts public declarations from reference modules.
//
// Detection is deliberately textual: a stripped line either starts with the
// function marker or the class marker, or it declares nothing. Indentation
// carries no meaning beyond the strip, so a nested declaration is
// indistinguishable from a top-level one. This matches the heuristic the
// coverage numbers are calibrated against and must not be "improved" into a
// real parser.
package symbol

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/portlint/portlint/internal/types"
)

// Default marker tokens for Python-style reference corpora.
const (
	DefaultFuncMarker    = "def "
	DefaultClassMarker   = "class "
	DefaultPrivatePrefix = "_"
)

// Extractor classifies declaration lines of a reference dialect.
type Extractor struct {
	// FuncMarker opens a function declaration line.
	FuncMarker string
	// ClassMarker opens a class declaration line.
	ClassMarker string
	// PrivatePrefix excludes a function whose name starts with it.
	// Classes have no private rule.
	PrivatePrefix string
}

// New returns an extractor configured for Python-style reference files.
func New() *Extractor {
	return &Extractor{
		FuncMarker:    DefaultFuncMarker,
		ClassMarker:   DefaultClassMarker,
		PrivatePrefix: DefaultPrivatePrefix,
	}
}

// Analysis is the extraction result for one reference module. Err is the
// recorded failure for modules that could not be read or decoded; the symbol
// list is empty in that case.
type Analysis struct {
	Module  string         `json:"module"`
	Symbols []types.Symbol `json:"symbols"`
	Err     string         `json:"error,omitempty"`
}

// Functions returns the function symbols in extraction order.
func (a Analysis) Functions() []types.Symbol {
	return a.byKind(types.KindFunction)
}

// Classes returns the class symbols in extraction order.
func (a Analysis) Classes() []types.Symbol {
	return a.byKind(types.KindClass)
}

func (a Analysis) byKind(kind types.SymbolKind) []types.Symbol {
	var out []types.Symbol
	for _, s := range a.Symbols {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// ParseLine classifies a single line and returns the declared symbol, if
// any. The line is stripped of surrounding whitespace before classification;
// the returned symbol carries no module (the caller stamps it).
func (e *Extractor) ParseLine(line string) (types.Symbol, bool) {
	stripped := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(stripped, e.FuncMarker):
		if strings.HasPrefix(stripped, e.FuncMarker+e.PrivatePrefix) {
			return types.Symbol{}, false
		}
		rest := strings.TrimPrefix(stripped, e.FuncMarker)
		name, _, _ := strings.Cut(rest, "(")
		return types.Symbol{Name: name, Kind: types.KindFunction}, true

	case strings.HasPrefix(stripped, e.ClassMarker):
		rest := strings.TrimPrefix(stripped, e.ClassMarker)
		name, _, _ := strings.Cut(rest, "(")
		name, _, _ = strings.Cut(name, ":")
		return types.Symbol{Name: name, Kind: types.KindClass}, true
	}

	return types.Symbol{}, false
}

// Source extracts the symbols declared in src, in file order, stamped with
// the given module name.
func (e *Extractor) Source(module string, src []byte) []types.Symbol {
	var symbols []types.Symbol
	for _, line := range strings.Split(string(src), "\n") {
		sym, ok := e.ParseLine(line)
		if !ok {
			continue
		}
		sym.Module = module
		symbols = append(symbols, sym)
	}
	return symbols
}

// File reads and extracts one reference module. Read and decode failures are
// folded into the analysis rather than returned: the run must go on over the
// remaining modules.
func (e *Extractor) File(path, module string) Analysis {
	content, err := os.ReadFile(path)
	if err != nil {
		return Analysis{Module: module, Err: err.Error()}
	}
	if !utf8.Valid(content) {
		return Analysis{Module: module, Err: "invalid utf-8 encoding"}
	}
	return Analysis{Module: module, Symbols: e.Source(module, content)}
}
