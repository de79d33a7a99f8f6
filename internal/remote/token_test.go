package remote

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "seller-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func expiredJWTSource(t *testing.T) TokenSource {
	t.Helper()
	return NewStaticTokenSource(signedJWT(t, time.Now().Add(-time.Hour)))
}

func TestStaticTokenSourceValidJWT(t *testing.T) {
	raw := signedJWT(t, time.Now().Add(time.Hour))
	source := NewStaticTokenSource(raw)

	token, err := source.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != raw {
		t.Fatal("token altered")
	}
}

func TestStaticTokenSourceExpiredJWT(t *testing.T) {
	source := expiredJWTSource(t)

	_, err := source.Token()
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("got %v, want ErrSessionExpired", err)
	}
}

func TestStaticTokenSourceOpaqueToken(t *testing.T) {
	source := NewStaticTokenSource("not-a-jwt-at-all")

	token, err := source.Token()
	if err != nil || token != "not-a-jwt-at-all" {
		t.Fatalf("opaque token mishandled: %q, %v", token, err)
	}
}

func TestStaticTokenSourceEmpty(t *testing.T) {
	source := NewStaticTokenSource("")

	token, err := source.Token()
	if err != nil || token != "" {
		t.Fatalf("empty token mishandled: %q, %v", token, err)
	}
}

func TestStaticTokenSourceJWTWithoutExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "seller-1"})
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := NewStaticTokenSource(raw).Token()
	if err != nil || got != raw {
		t.Fatalf("expiry-free JWT mishandled: %v", err)
	}
}
