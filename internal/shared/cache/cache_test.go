package cache

import (
	"strings"
	"testing"
)

func TestResultKey(t *testing.T) {
	base := ResultKey("javascript", "for (;;) {}")

	if !strings.HasPrefix(base, resultKeyPrefix) {
		t.Fatalf("missing prefix: %s", base)
	}
	if len(base) != len(resultKeyPrefix)+64 {
		t.Fatalf("unexpected key length %d", len(base))
	}

	tests := []struct {
		name     string
		language string
		code     string
		same     bool
	}{
		{name: "identical", language: "javascript", code: "for (;;) {}", same: true},
		{name: "language case", language: " JavaScript ", code: "for (;;) {}", same: true},
		{name: "surrounding whitespace", language: "javascript", code: "\n  for (;;) {}\n", same: true},
		{name: "other language", language: "python", code: "for (;;) {}", same: false},
		{name: "other code", language: "javascript", code: "while (true) {}", same: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResultKey(tt.language, tt.code)
			if (got == base) != tt.same {
				t.Fatalf("ResultKey(%q, %q) = %s, same=%v", tt.language, tt.code, got, got == base)
			}
		})
	}
}

func TestResultKeySeparatesLanguageFromCode(t *testing.T) {
	if ResultKey("go", "lang x") == ResultKey("golang", " x") {
		t.Fatalf("expected distinct keys")
	}
}
