package usage

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"greencode-backend/internal/shared/server/middleware"
)

func setupUsageRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService())
	router := gin.New()
	router.Use(middleware.Auth())
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterDevRoutes(api.Group("/dev"))
	return router
}

func TestGetUsageReturnsFreeDefaults(t *testing.T) {
	router := setupUsageRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil)
	req.Header.Set("X-Guest-Id", "g1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Plan         string `json:"plan"`
		Limit        int    `json:"limit"`
		Remaining    int    `json:"remaining"`
		HistoryLimit int    `json:"historyLimit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Plan != PlanFree || body.Limit != 10 || body.Remaining != 10 || body.HistoryLimit != 5 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestSetPlanValidatesInput(t *testing.T) {
	router := setupUsageRouter(t)
	cases := []struct {
		name string
		body string
		want int
	}{
		{name: "missing", body: `{}`, want: http.StatusBadRequest},
		{name: "unknown", body: `{"plan":"gold"}`, want: http.StatusBadRequest},
		{name: "pro", body: `{"plan":"pro"}`, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/dev/usage/plan", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Guest-Id", "g1")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}
