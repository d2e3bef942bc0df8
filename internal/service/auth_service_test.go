package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/config"
	"github.com/testgenius/backend/internal/service"
)

func newAuthService(expiry time.Duration) *service.AuthService {
	return service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: expiry,
	})
}

func TestIssueGuestToken_RoundTrip(t *testing.T) {
	svc := newAuthService(time.Hour)

	token, clientID, err := svc.IssueGuestToken()
	if err != nil {
		t.Fatalf("IssueGuestToken: %v", err)
	}
	if clientID == uuid.Nil {
		t.Fatal("expected a non-nil client ID")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.ClientID != clientID {
		t.Errorf("expected client ID %s, got %s", clientID, claims.ClientID)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newAuthService(time.Hour)
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newAuthService(time.Hour).IssueGuestToken()
	if err != nil {
		t.Fatalf("IssueGuestToken: %v", err)
	}

	other := service.NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected an error for a token signed with another secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newAuthService(-time.Minute)
	token, _, err := svc.IssueGuestToken()
	if err != nil {
		t.Fatalf("IssueGuestToken: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}
