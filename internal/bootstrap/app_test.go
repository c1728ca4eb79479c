package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"greencode-backend/internal/shared/config"
)

func TestBuildDevUsesInMemoryFallbacks(t *testing.T) {
	app, err := Build(config.Config{
		Env:                 "dev",
		LocalStoreDir:       t.TempDir(),
		RateLimitRPS:        2,
		RateLimitBurst:      10,
		NestedLoopProximity: 80,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.DB != nil || app.Cache != nil || app.Events != nil {
		t.Fatalf("expected no external backends")
	}
	if app.Router == nil || app.AnalysesService == nil {
		t.Fatalf("expected router and services")
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("health = %d", resp.Code)
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	if _, err := Build(config.Config{Env: "production", LocalStoreDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestBuildRejectsInvalidPatternLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	if err := os.WriteFile(path, []byte("patterns: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Build(config.Config{Env: "dev", LocalStoreDir: t.TempDir(), PatternLibraryPath: path})
	if err == nil {
		t.Fatalf("expected error for invalid library")
	}
}

func TestBuildRejectsOutOfRangeProximity(t *testing.T) {
	_, err := Build(config.Config{Env: "dev", LocalStoreDir: t.TempDir(), NestedLoopProximity: 5000})
	if err == nil {
		t.Fatalf("expected error for proximity out of range")
	}
}

func TestBuildS3RequiresBucket(t *testing.T) {
	_, err := Build(config.Config{Env: "dev", ObjectStoreType: "s3"})
	if err == nil {
		t.Fatalf("expected error without S3_BUCKET")
	}
}
