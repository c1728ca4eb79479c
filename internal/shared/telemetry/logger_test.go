package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read output: %v", err)
	}
	return buf.String()
}

func TestInfoWritesJSONLine(t *testing.T) {
	out := captureStdout(t, func() {
		Info("analysis.completed", map[string]any{"analysis_id": "a1", "err": errors.New("boom")})
	})
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload["level"] != "info" || payload["msg"] != "analysis.completed" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
	if payload["analysis_id"] != "a1" || payload["err"] != "boom" {
		t.Fatalf("unexpected fields %v", payload)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("info")
	if out := captureStdout(t, func() { Debug("hidden", nil) }); out != "" {
		t.Fatalf("expected no output at info level, got %q", out)
	}
	SetLevel("debug")
	if out := captureStdout(t, func() { Debug("shown", nil) }); !strings.Contains(out, `"level":"debug"`) {
		t.Fatalf("expected debug line, got %q", out)
	}
}
