package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"morris/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	board := domain.NewBoard(domain.White)
	board.Apply(domain.Drop(domain.D2))
	snap := board.Snapshot()

	svc := NewTokenService("test-secret", time.Hour)
	tokenString, err := svc.Issue("user123", snap)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	claims := parseResumeClaims(t, tokenString, "test-secret")
	if got := stringClaim(t, claims, "sub"); got != "user123" {
		t.Fatalf("sub = %s, want user123", got)
	}
	if got := stringClaim(t, claims, "iss"); got != resumeTokenIssuer {
		t.Fatalf("iss = %s, want %s", got, resumeTokenIssuer)
	}

	user, got, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if user != "user123" {
		t.Fatalf("user = %s, want user123", user)
	}
	if got != snap {
		t.Fatalf("snapshot = %+v, want %+v", got, snap)
	}
}

func TestTokenServiceRejects(t *testing.T) {
	snap := domain.NewBoard(domain.White).Snapshot()
	svc := NewTokenService("test-secret", time.Minute)
	tokenString, err := svc.Issue("user", snap)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", time.Minute)
		if _, _, err := other.Verify(tokenString); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenService("test-secret", time.Minute)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, _, err := late.Verify(tokenString); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, _, err := svc.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestTokenServiceRequiresConfig(t *testing.T) {
	snap := domain.NewBoard(domain.White).Snapshot()
	if _, err := NewTokenService("", time.Minute).Issue("user", snap); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewTokenService("s", time.Minute).Issue("", snap); err == nil {
		t.Fatal("expected error for empty user")
	}
}

func parseResumeClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
