package engine

// Kind identifies a detected source pattern.
type Kind string

const (
	KindNestedLoops     Kind = "nested_loops"
	KindSingleLoop      Kind = "single_loop"
	KindRecursion       Kind = "recursion"
	KindSorting         Kind = "sorting"
	KindMemoryLeak      Kind = "memory_leak"
	KindIntervalLeak    Kind = "interval_leak"
	KindAsyncDebt       Kind = "async_debt"
	KindGlobalPollution Kind = "global_pollution"
)

// Kinds lists every detection kind in evaluation order.
var Kinds = []Kind{
	KindNestedLoops,
	KindSingleLoop,
	KindRecursion,
	KindSorting,
	KindMemoryLeak,
	KindIntervalLeak,
	KindAsyncDebt,
	KindGlobalPollution,
}

// Severity ranks how urgently a detection should be addressed.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// ComplexityClass is the estimated asymptotic class of the analyzed code.
type ComplexityClass string

const (
	ComplexityConstant     ComplexityClass = "O(1)"
	ComplexityLogarithmic  ComplexityClass = "O(log n)"
	ComplexityLinear       ComplexityClass = "O(n)"
	ComplexityLinearithmic ComplexityClass = "O(n log n)"
	ComplexityQuadratic    ComplexityClass = "O(n²)"
)

// Rating buckets the energy score.
type Rating string

const (
	RatingGreenEfficient Rating = "Green Efficient"
	RatingModerate       Rating = "Moderate"
	RatingEnergyHeavy    Rating = "Energy Heavy"
)

// TipCategory groups language tips.
type TipCategory string

const (
	TipPerformance TipCategory = "Performance"
	TipMemory      TipCategory = "Memory"
	TipModern      TipCategory = "Modern"
	TipAsync       TipCategory = "Async"
	TipTypeSafety  TipCategory = "Type Safety"
	TipConcurrency TipCategory = "Concurrency"
	TipStyle       TipCategory = "Style"
)

func (c TipCategory) valid() bool {
	switch c {
	case TipPerformance, TipMemory, TipModern, TipAsync, TipTypeSafety, TipConcurrency, TipStyle:
		return true
	default:
		return false
	}
}

// Tip is a language-specific best-practice hint.
type Tip struct {
	Category TipCategory `json:"cat" yaml:"category"`
	Text     string      `json:"tip" yaml:"text"`
}

// Snippet is a before/after remediation example.
type Snippet struct {
	Before      string `json:"before" yaml:"before"`
	After       string `json:"after" yaml:"after"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Suggestion is the remediation record emitted for one detection.
type Suggestion struct {
	Type          Kind     `json:"type"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Detail        string   `json:"detail"`
	Saving        string   `json:"saving"`
	OptimizedCode *Snippet `json:"optimizedCode"`
}

// CurvePoint is one sample of an operation-count curve.
type CurvePoint struct {
	N   int `json:"n"`
	Ops int `json:"ops"`
}

// ComplexityData feeds complexity visualisations.
type ComplexityData struct {
	Detected ComplexityClass                  `json:"detected"`
	Curves   map[ComplexityClass][]CurvePoint `json:"curves"`
}

// Result is the full outcome of one analysis.
type Result struct {
	Language            string          `json:"language"`
	Lines               int             `json:"lines"`
	Complexity          ComplexityClass `json:"complexity"`
	EnergyScore         int             `json:"energyScore"`
	EnergyCostKwh       float64         `json:"energyCostKwh"`
	CO2Grams            float64         `json:"co2Grams"`
	DollarCost          float64         `json:"dollarCost"`
	SustainabilityScore int             `json:"sustainabilityScore"`
	Rating              Rating          `json:"rating"`
	Detections          []Kind          `json:"detections"`
	Suggestions         []Suggestion    `json:"suggestions"`
	OptimizedEnergy     int             `json:"optimizedEnergy"`
	PotentialSaving     int             `json:"potentialSaving"`
	LanguageTips        []Tip           `json:"languageTips"`
	ComplexityData      ComplexityData  `json:"complexityData"`
}

// Has reports whether kind was detected.
func (r Result) Has(kind Kind) bool {
	return containsKind(r.Detections, kind)
}

func containsKind(kinds []Kind, kind Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
