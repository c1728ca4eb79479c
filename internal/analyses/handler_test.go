package analyses

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"greencode-backend/internal/shared/auth"
	"greencode-backend/internal/shared/server/middleware"
)

func setupAnalysisRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	svc := newTestService(t)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Auth())
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, svc
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.SignJWT(auth.Claims{Sub: userID})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return "Bearer " + token
}

func postAnalyze(t *testing.T, router *gin.Engine, authHeader, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	} else {
		req.Header.Set("X-Guest-Id", "g1")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func get(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	} else {
		req.Header.Set("X-Guest-Id", "g1")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func analyzeBody(t *testing.T, code, language string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"code": code, "language": language})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestAnalyzeEndpointReturnsFlatResult(t *testing.T) {
	router, _ := setupAnalysisRouter(t)

	resp := postAnalyze(t, router, "", analyzeBody(t, nestedLoops, "javascript"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		ID                  string   `json:"id"`
		Language            string   `json:"language"`
		EnergyScore         int      `json:"energyScore"`
		CO2Grams            float64  `json:"co2Grams"`
		SustainabilityScore int      `json:"sustainabilityScore"`
		Rating              string   `json:"rating"`
		Detections          []string `json:"detections"`
		OptimizedEnergy     int      `json:"optimizedEnergy"`
		PotentialSaving     int      `json:"potentialSaving"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID == "" || body.Language != "javascript" || body.EnergyScore != 40 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.CO2Grams != 0.36 || body.SustainabilityScore != 60 || body.Rating != "Moderate" {
		t.Fatalf("unexpected metrics %+v", body)
	}
	if body.OptimizedEnergy != 22 || body.PotentialSaving != 18 {
		t.Fatalf("unexpected savings %+v", body)
	}
	if len(body.Detections) != 1 || body.Detections[0] != "nested_loops" {
		t.Fatalf("unexpected detections %v", body.Detections)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	router, _ := setupAnalysisRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "code=1"},
		{name: "blank code", body: `{"code":"   ","language":"python"}`},
		{name: "missing code", body: `{"language":"python"}`},
		{name: "too large", body: analyzeBody(t, strings.Repeat("x", maxCodeBytes+1), "python")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postAnalyze(t, router, "", tt.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != "validation_error" {
				t.Fatalf("error code = %q", body.Error.Code)
			}
		})
	}
}

func TestAnalyzeEndpointLimitReached(t *testing.T) {
	router, _ := setupAnalysisRouter(t)
	token := bearer(t, "user-1")

	for i := 0; i < 10; i++ {
		if resp := postAnalyze(t, router, token, analyzeBody(t, "const x = 1;", "")); resp.Code != http.StatusOK {
			t.Fatalf("analysis %d: status %d", i, resp.Code)
		}
	}

	resp := postAnalyze(t, router, token, analyzeBody(t, "const x = 1;", ""))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Used         int    `json:"used"`
				Limit        int    `json:"limit"`
				RequiredPlan string `json:"requiredPlan"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "analysis_limit_reached" {
		t.Fatalf("error code = %q", body.Error.Code)
	}
	if body.Error.Details.Used != 10 || body.Error.Details.Limit != 10 || body.Error.Details.RequiredPlan != "pro" {
		t.Fatalf("unexpected details %+v", body.Error.Details)
	}
}

func TestGetAnalysisOwnership(t *testing.T) {
	router, _ := setupAnalysisRouter(t)
	owner := bearer(t, "user-1")

	created := postAnalyze(t, router, owner, analyzeBody(t, nestedLoops, "python"))
	var a struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(created.Body).Decode(&a); err != nil {
		t.Fatalf("decode: %v", err)
	}

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{name: "owner", path: "/api/v1/analyses/" + a.ID, auth: owner, want: http.StatusOK},
		{name: "other user", path: "/api/v1/analyses/" + a.ID, auth: bearer(t, "user-2"), want: http.StatusNotFound},
		{name: "unknown id", path: "/api/v1/analyses/nope", auth: owner, want: http.StatusNotFound},
		{name: "fixes", path: "/api/v1/analyses/" + a.ID + "/fixes", auth: owner, want: http.StatusOK},
		{name: "foreign report", path: "/api/v1/analyses/" + a.ID + "/report", auth: bearer(t, "user-2"), want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := get(router, tt.path, tt.auth); resp.Code != tt.want {
				t.Fatalf("GET %s = %d, want %d", tt.path, resp.Code, tt.want)
			}
		})
	}
}

func TestDownloadReport(t *testing.T) {
	router, _ := setupAnalysisRouter(t)
	owner := bearer(t, "user-1")

	created := postAnalyze(t, router, owner, analyzeBody(t, nestedLoops, "javascript"))
	var a struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(created.Body).Decode(&a); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp := get(router, "/api/v1/analyses/"+a.ID+"/report", owner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "GreenCode_Report.txt") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.Contains(resp.Body.String(), "Energy Score:       40 units") {
		t.Fatalf("unexpected report\n%s", resp.Body.String())
	}
}

func TestListAnalyses(t *testing.T) {
	router, _ := setupAnalysisRouter(t)

	if resp := get(router, "/api/v1/analyses", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("guests should get 401, got %d", resp.Code)
	}

	owner := bearer(t, "user-1")
	for i := 0; i < 3; i++ {
		postAnalyze(t, router, owner, analyzeBody(t, nestedLoops, "javascript"))
	}

	resp := get(router, "/api/v1/analyses?limit=2", owner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var items []struct {
		ID         string   `json:"id"`
		Rating     string   `json:"rating"`
		Detections []string `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Rating != "Moderate" || items[0].Detections[0] != "nested_loops" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestListLanguages(t *testing.T) {
	router, _ := setupAnalysisRouter(t)
	resp := get(router, "/api/v1/languages", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Languages []string `json:"languages"`
		Default   string   `json:"default"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Default != "javascript" || len(body.Languages) != 9 {
		t.Fatalf("unexpected body %+v", body)
	}
}
