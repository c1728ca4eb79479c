package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"greencode-backend/internal/shared/auth"
)

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth())
	router.OPTIONS("/api/v1/analyze", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthResolvesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := auth.SignJWT(auth.Claims{Sub: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	cases := []struct {
		name       string
		header     string
		value      string
		wantStatus int
		wantUser   string
		wantGuest  bool
	}{
		{name: "bearer", header: "Authorization", value: "Bearer " + token, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "guest", header: "X-Guest-Id", value: "g-42", wantStatus: http.StatusOK, wantUser: "guest:g-42", wantGuest: true},
		{name: "bad_token", header: "Authorization", value: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "basic_scheme", header: "Authorization", value: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "missing", wantStatus: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser string
			var gotGuest bool
			router := gin.New()
			router.Use(Auth())
			router.GET("/who", func(c *gin.Context) {
				gotUser = UserIDFromContext(c)
				gotGuest = IsGuest(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.Code)
			}
			if gotUser != tc.wantUser || gotGuest != tc.wantGuest {
				t.Fatalf("user=%q guest=%v, want %q/%v", gotUser, gotGuest, tc.wantUser, tc.wantGuest)
			}
		})
	}
}
