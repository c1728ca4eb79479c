package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	defaultLanguage = "javascript"
	genericSnippet  = "default"
	countToken      = "{count}"
)

//go:embed data/library.yaml
var embeddedLibrary []byte

// Pattern is the library entry for one detection kind.
type Pattern struct {
	Severity Severity           `yaml:"severity"`
	Title    string             `yaml:"title"`
	Detail   string             `yaml:"detail"`
	Saving   string             `yaml:"saving"`
	Snippets map[string]Snippet `yaml:"snippets"`
}

// Library holds remediation patterns and language tips. It is immutable after
// load and safe for concurrent use.
type Library struct {
	patterns map[Kind]Pattern
	tips     map[string][]Tip
}

type libraryDoc struct {
	Patterns map[Kind]Pattern `yaml:"patterns"`
	Tips     map[string][]Tip `yaml:"tips"`
}

var (
	defaultLibraryOnce sync.Once
	defaultLibrary     *Library
	defaultLibraryErr  error
)

// DefaultLibrary returns the embedded library, parsed once per process.
func DefaultLibrary() (*Library, error) {
	defaultLibraryOnce.Do(func() {
		defaultLibrary, defaultLibraryErr = ParseLibrary(embeddedLibrary)
	})
	return defaultLibrary, defaultLibraryErr
}

// LoadLibraryFile reads and validates a library document from disk.
func LoadLibraryFile(path string) (*Library, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern library: %w", err)
	}
	return ParseLibrary(b)
}

// ParseLibrary decodes and validates a YAML library document.
func ParseLibrary(data []byte) (*Library, error) {
	var doc libraryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	lib := &Library{
		patterns: make(map[Kind]Pattern, len(doc.Patterns)),
		tips:     make(map[string][]Tip, len(doc.Tips)),
	}
	for kind, p := range doc.Patterns {
		snippets := make(map[string]Snippet, len(p.Snippets))
		for lang, s := range p.Snippets {
			snippets[strings.ToLower(strings.TrimSpace(lang))] = s
		}
		p.Snippets = snippets
		lib.patterns[kind] = p
	}
	for lang, tips := range doc.Tips {
		lib.tips[strings.ToLower(strings.TrimSpace(lang))] = tips
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Validate checks that every detection kind is described and that the
// fallback tip list exists.
func (l *Library) Validate() error {
	var errs []error
	for _, kind := range Kinds {
		p, ok := l.patterns[kind]
		if !ok {
			errs = append(errs, fmt.Errorf("pattern %q missing", kind))
			continue
		}
		if !p.Severity.valid() {
			errs = append(errs, fmt.Errorf("pattern %q: invalid severity %q", kind, p.Severity))
		}
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Detail) == "" {
			errs = append(errs, fmt.Errorf("pattern %q: title and detail are required", kind))
		}
	}
	for kind := range l.patterns {
		if !containsKind(Kinds, kind) {
			errs = append(errs, fmt.Errorf("pattern %q: unknown kind", kind))
		}
	}
	if len(l.tips[defaultLanguage]) == 0 {
		errs = append(errs, fmt.Errorf("tips for %q are required", defaultLanguage))
	}
	for lang, tips := range l.tips {
		for i, tip := range tips {
			if !tip.Category.valid() {
				errs = append(errs, fmt.Errorf("tips %q[%d]: invalid category %q", lang, i, tip.Category))
			}
		}
	}
	return errors.Join(errs...)
}

// Pattern returns the entry for kind.
func (l *Library) Pattern(kind Kind) (Pattern, bool) {
	p, ok := l.patterns[kind]
	return p, ok
}

// Snippet resolves the remediation example for kind in language, falling back
// to the generic example and then to JavaScript.
func (l *Library) Snippet(kind Kind, language string) (Snippet, bool) {
	p, ok := l.patterns[kind]
	if !ok {
		return Snippet{}, false
	}
	for _, key := range []string{normalizeLanguage(language), genericSnippet, defaultLanguage} {
		if s, ok := p.Snippets[key]; ok {
			return s, true
		}
	}
	return Snippet{}, false
}

// Tips returns the tip list for language, or JavaScript's when the language
// has none.
func (l *Library) Tips(language string) []Tip {
	if tips, ok := l.tips[normalizeLanguage(language)]; ok {
		return tips
	}
	return l.tips[defaultLanguage]
}

// Languages lists languages with a dedicated tip list, sorted.
func (l *Library) Languages() []string {
	out := make([]string, 0, len(l.tips))
	for lang := range l.tips {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// KnownLanguage returns the normalized form of language and whether the
// library carries a tip list for it.
func (l *Library) KnownLanguage(language string) (string, bool) {
	lang := normalizeLanguage(language)
	_, ok := l.tips[lang]
	return lang, ok
}

// RequestLanguage is the language a Result reports for a request: the
// caller's value trimmed, or JavaScript when blank. Casing is kept.
func RequestLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return defaultLanguage
	}
	return language
}

func normalizeLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		return defaultLanguage
	}
	return lang
}

func renderDetail(detail string, count int) string {
	return strings.ReplaceAll(detail, countToken, strconv.Itoa(count))
}
