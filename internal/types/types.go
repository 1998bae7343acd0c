package types

// SymbolKind identifies the category of an extracted declaration.
type SymbolKind int

const (
	KindFunction SymbolKind = iota
	KindClass
)

// String returns the human-readable name of the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// MarshalText renders the kind as its name in JSON output.
func (k SymbolKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Symbol is a public declaration extracted from a reference module.
type Symbol struct {
	Name   string     `json:"name"`
	Kind   SymbolKind `json:"kind"`
	Module string     `json:"module"`
}

// NotFound is the location reported for symbols without a candidate match.
const NotFound = "NOT FOUND"

// MatchResult records the equivalence-search verdict for one symbol.
type MatchResult struct {
	Symbol   Symbol `json:"symbol"`
	Found    bool   `json:"found"`
	Location string `json:"location"`
}

// MissingItem is one entry of a missing-symbol artifact. The field names are
// part of the artifact format and must stay `name` and `module`.
type MissingItem struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// ModuleResult holds every match result of one analyzed reference module, in
// extraction order. Err carries the extraction failure when the module could
// not be read; its symbol list is then empty.
type ModuleResult struct {
	Module  string        `json:"module"`
	Err     string        `json:"error,omitempty"`
	Results []MatchResult `json:"results"`
}

// CoverageReport is the aggregate outcome of a verification run.
type CoverageReport struct {
	TotalFunctions       int            `json:"total_functions"`
	ImplementedFunctions int            `json:"implemented_functions"`
	TotalClasses         int            `json:"total_classes"`
	ImplementedClasses   int            `json:"implemented_classes"`
	Modules              []ModuleResult `json:"modules"`
	MissingFunctions     []MissingItem  `json:"missing_functions"`
	MissingClasses       []MissingItem  `json:"missing_classes"`
}

// Total returns the number of extracted symbols across both kinds.
func (r *CoverageReport) Total() int {
	return r.TotalFunctions + r.TotalClasses
}

// Implemented returns the number of found symbols across both kinds.
func (r *CoverageReport) Implemented() int {
	return r.ImplementedFunctions + r.ImplementedClasses
}

// Missing returns the number of missing symbols across both kinds.
func (r *CoverageReport) Missing() int {
	return len(r.MissingFunctions) + len(r.MissingClasses)
}

// Percentage returns the coverage ratio as a percentage. A report without
// symbols counts as fully covered so that symbol-less modules never fail a
// gate on a division by zero.
func (r *CoverageReport) Percentage() float64 {
	total := r.Total()
	if total == 0 {
		return 100
	}
	return float64(r.Implemented()) / float64(total) * 100
}

// Outcome is what the emit step hands to the process boundary. Pass reflects
// the threshold comparison; mapping Pass to an exit code is the boundary's
// job, according to the configured gate policy.
type Outcome struct {
	Pass       bool
	Percentage float64
	Report     CoverageReport
	Text       string
	Artifacts  []string
}
