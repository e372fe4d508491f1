package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestNamespace(t *testing.T) {
	svc := New()

	if ns, err := svc.Namespace(context.Background()); err != nil || ns != DefaultNamespace {
		t.Errorf("no token: got %q, %v", ns, err)
	}

	ctx := context.WithValue(context.Background(), authorization.TokenKey,
		signedToken(t, jwt.MapClaims{"email": "alice@corp.example", "sub": "abc123"}))
	if ns, _ := svc.Namespace(ctx); ns != "alice@corp.example" {
		t.Errorf("email claim: got %q", ns)
	}

	ctx = context.WithValue(context.Background(), authorization.TokenKey,
		signedToken(t, jwt.MapClaims{"preferred_username": "bob@corp.example", "sub": "def456"}))
	if ns, _ := svc.Namespace(ctx); ns != "bob@corp.example" {
		t.Errorf("preferred_username claim: got %q", ns)
	}

	ctx = context.WithValue(context.Background(), authorization.TokenKey,
		signedToken(t, jwt.MapClaims{"sub": "ghi789"}))
	if ns, _ := svc.Namespace(ctx); ns != "ghi789" {
		t.Errorf("sub claim: got %q", ns)
	}

	ctx = context.WithValue(context.Background(), authorization.TokenKey, "not-a-jwt")
	if ns, _ := svc.Namespace(ctx); ns != DefaultNamespace {
		t.Errorf("malformed token: got %q", ns)
	}

	ctx = context.WithValue(context.Background(), authorization.TokenKey, 42)
	if _, err := svc.Namespace(ctx); err == nil {
		t.Error("unsupported token type: expected error")
	}

	var nilSvc *Service
	if ns, err := nilSvc.Namespace(context.Background()); err != nil || ns != DefaultNamespace {
		t.Errorf("nil service: got %q, %v", ns, err)
	}
}
