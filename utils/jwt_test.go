package utils

import (
	"os"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	token, err := GenerateToken("42")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID != "42" {
		t.Fatalf("claims.UserID = %q, want %q", claims.UserID, "42")
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	if _, err := VerifyToken("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	os.Setenv("JWT_SECRET", "key-one")
	token, err := GenerateToken("7")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	os.Setenv("JWT_SECRET", "key-two")
	defer os.Unsetenv("JWT_SECRET")

	if _, err := VerifyToken(token); err == nil {
		t.Fatalf("expected error for token signed with a different key")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	if _, err := GenerateToken("1"); err == nil {
		t.Fatalf("expected error when JWT_SECRET is unset")
	}
}
