package engine

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultNestedLoopProximity is the widest gap, in characters, between two
	// loop keywords for them to count as nested.
	DefaultNestedLoopProximity = 80
	maxNestedLoopProximity     = 1000
)

// Config tunes detection heuristics.
type Config struct {
	NestedLoopProximity int
}

// DefaultConfig returns the stock heuristics.
func DefaultConfig() Config {
	return Config{NestedLoopProximity: DefaultNestedLoopProximity}
}

// Rule is one entry of the detection table. Match reports whether the rule
// fires and an evidence count; SkipIf suppresses the rule when any listed kind
// already fired earlier in the table.
type Rule struct {
	Kind       Kind
	Score      int
	Complexity ComplexityClass
	SkipIf     []Kind
	Match      func(code string) (bool, int)
}

// Detection is the raw outcome of running the rule table over one snippet.
type Detection struct {
	Lines       int
	EnergyScore int
	Complexity  ComplexityClass
	Kinds       []Kind
	Evidence    map[Kind]int
}

// Detector evaluates the rule table against source text.
type Detector struct {
	rules []Rule
}

var (
	singleLoopRx   = regexp.MustCompile(`\bfor\b|\bwhile\b`)
	functionDeclRx = regexp.MustCompile(`function\s+(\w+)`)
	sortCallRx     = regexp.MustCompile(`\.sort\s*\(`)
	thenCallRx     = regexp.MustCompile(`\.then\s*\(`)
	rejectionRx    = regexp.MustCompile(`\.catch|try\s*\{`)
	topLevelVarRx  = regexp.MustCompile(`(?m)^var\s+\w+`)
)

// NewDetector compiles the rule table for cfg.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.NestedLoopProximity < 0 || cfg.NestedLoopProximity > maxNestedLoopProximity {
		return nil, fmt.Errorf("nested loop proximity %d out of range [0,%d]", cfg.NestedLoopProximity, maxNestedLoopProximity)
	}
	nestedRx, err := regexp.Compile(nestedLoopPattern(cfg.NestedLoopProximity))
	if err != nil {
		return nil, fmt.Errorf("compile nested loop pattern: %w", err)
	}

	rules := []Rule{
		{
			Kind:       KindNestedLoops,
			Score:      40,
			Complexity: ComplexityQuadratic,
			Match:      matchRegexp(nestedRx),
		},
		{
			Kind:       KindSingleLoop,
			Score:      20,
			Complexity: ComplexityLinear,
			SkipIf:     []Kind{KindNestedLoops},
			Match:      matchRegexp(singleLoopRx),
		},
		{Kind: KindRecursion, Score: 25, Match: matchSelfCall},
		{Kind: KindSorting, Score: 15, Match: matchRegexp(sortCallRx)},
		{Kind: KindMemoryLeak, Score: 20, Match: matchUnpaired("addEventListener", "removeEventListener")},
		{Kind: KindIntervalLeak, Score: 15, Match: matchUnpaired("setInterval", "clearInterval")},
		{Kind: KindAsyncDebt, Score: 10, Match: matchUnhandledThen},
		{Kind: KindGlobalPollution, Score: 8, Match: matchTopLevelVars},
	}
	return &Detector{rules: rules}, nil
}

// Rules returns a copy of the compiled table.
func (d *Detector) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Detect runs every rule in order over code. Code is expected to be trimmed.
func (d *Detector) Detect(code string) Detection {
	det := Detection{
		Lines:      strings.Count(code, "\n") + 1,
		Complexity: ComplexityConstant,
		Kinds:      make([]Kind, 0, len(d.rules)),
		Evidence:   make(map[Kind]int),
	}

	for _, rule := range d.rules {
		if skipped(rule, det.Kinds) {
			continue
		}
		ok, count := rule.Match(code)
		if !ok {
			continue
		}
		det.EnergyScore += rule.Score
		if rule.Complexity != "" {
			det.Complexity = rule.Complexity
		}
		det.Kinds = append(det.Kinds, rule.Kind)
		det.Evidence[rule.Kind] = count
	}

	det.EnergyScore += det.Lines / 10
	return det
}

func skipped(rule Rule, fired []Kind) bool {
	for _, k := range rule.SkipIf {
		if containsKind(fired, k) {
			return true
		}
	}
	return false
}

// nestedLoopPattern matches two loop keywords within n characters. Keywords
// are not word-bounded, so identifiers such as "format" participate.
func nestedLoopPattern(n int) string {
	gap := fmt.Sprintf(`[\s\S]{0,%d}`, n)
	return "for" + gap + "for|while" + gap + "while|for" + gap + "while"
}

func matchRegexp(rx *regexp.Regexp) func(string) (bool, int) {
	return func(code string) (bool, int) {
		if rx.MatchString(code) {
			return true, 1
		}
		return false, 0
	}
}

func matchUnpaired(acquire, release string) func(string) (bool, int) {
	return func(code string) (bool, int) {
		if strings.Contains(code, acquire) && !strings.Contains(code, release) {
			return true, strings.Count(code, acquire)
		}
		return false, 0
	}
}

// matchSelfCall only inspects the first declared function name. Later
// declarations and non-"function" syntaxes are ignored.
func matchSelfCall(code string) (bool, int) {
	m := functionDeclRx.FindStringSubmatch(code)
	if m == nil {
		return false, 0
	}
	name := m[1]
	declRx := regexp.MustCompile(`function\s+` + regexp.QuoteMeta(name))
	rest := code
	if loc := declRx.FindStringIndex(code); loc != nil {
		rest = code[:loc[0]] + code[loc[1]:]
	}
	callRx := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	if callRx.MatchString(rest) {
		return true, len(callRx.FindAllStringIndex(rest, -1))
	}
	return false, 0
}

func matchUnhandledThen(code string) (bool, int) {
	if !thenCallRx.MatchString(code) || rejectionRx.MatchString(code) {
		return false, 0
	}
	return true, len(thenCallRx.FindAllStringIndex(code, -1))
}

func matchTopLevelVars(code string) (bool, int) {
	n := len(topLevelVarRx.FindAllStringIndex(code, -1))
	return n > 3, n
}
