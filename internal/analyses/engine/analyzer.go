package engine

import (
	"errors"
	"strings"
)

// ErrEmptyCode is returned when the submitted code is blank.
var ErrEmptyCode = errors.New("code is required")

// Analyzer runs detection, metrics, suggestion assembly and tip selection.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	lib      *Library
	detector *Detector
}

// NewAnalyzer builds an Analyzer over lib with the given heuristics.
func NewAnalyzer(lib *Library, cfg Config) (*Analyzer, error) {
	if lib == nil {
		return nil, errors.New("pattern library is required")
	}
	det, err := NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	return &Analyzer{lib: lib, detector: det}, nil
}

// NewDefaultAnalyzer uses the embedded library and stock heuristics.
func NewDefaultAnalyzer() (*Analyzer, error) {
	lib, err := DefaultLibrary()
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(lib, DefaultConfig())
}

// Library exposes the pattern library backing the analyzer.
func (a *Analyzer) Library() *Library {
	return a.lib
}

// Analyze scores code. Surrounding whitespace is ignored and an empty
// language means JavaScript. The same input always yields the same Result.
func (a *Analyzer) Analyze(code, language string) (Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, ErrEmptyCode
	}
	language = RequestLanguage(language)

	det := a.detector.Detect(code)
	m := ComputeMetrics(det.EnergyScore)

	return Result{
		Language:            language,
		Lines:               det.Lines,
		Complexity:          det.Complexity,
		EnergyScore:         det.EnergyScore,
		EnergyCostKwh:       m.EnergyCostKwh,
		CO2Grams:            m.CO2Grams,
		DollarCost:          m.DollarCost,
		SustainabilityScore: m.SustainabilityScore,
		Rating:              m.Rating,
		Detections:          det.Kinds,
		Suggestions:         Assemble(a.lib, det, language),
		OptimizedEnergy:     m.OptimizedEnergy,
		PotentialSaving:     m.PotentialSaving,
		LanguageTips:        SelectTips(a.lib, language, det.Kinds),
		ComplexityData: ComplexityData{
			Detected: det.Complexity,
			Curves:   ComplexityCurves(),
		},
	}, nil
}
