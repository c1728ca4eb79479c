package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	token, err := SignJWT(Claims{Sub: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "a@example.com" || claims.Exp == 0 {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	valid, err := SignJWT(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	expired, err := SignJWT(Claims{Sub: "user-1", Iat: 1, Exp: time.Now().Add(-time.Hour).Unix()})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	parts := strings.Split(valid, ".")
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	cases := map[string]string{
		"malformed":     "abc.def",
		"tampered_sig":  parts[0] + "." + parts[1] + ".AAAA",
		"expired":       expired,
		"alg_none":      noneHeader + "." + parts[1] + "." + parts[2],
		"wrong_payload": parts[0] + ".!!!." + parts[2],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{Sub: "user-1"}); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}
