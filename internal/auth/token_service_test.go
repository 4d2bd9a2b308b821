package auth

import (
	"testing"
	"time"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	token, err := svc.IssueToken("acct-1", "owner", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.AccountID() != "acct-1" {
		t.Errorf("Expected account acct-1, got %s", claims.AccountID())
	}
	if claims.Role() != "owner" {
		t.Errorf("Expected role owner, got %s", claims.Role())
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-a"))
	validator := NewTokenService([]byte("secret-b"))

	token, err := issuer.IssueToken("acct-1", "owner", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := validator.ValidateToken(token); err == nil {
		t.Fatal("Token signed with a different secret must not validate")
	}
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	token, err := svc.IssueToken("acct-1", "owner", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("Expired token must not validate")
	}
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatal("Garbage input must not validate")
	}
}
