package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret-key",
		Issuer: "records-api-test",
	})
}

func TestAccessTokenRoundtrip(t *testing.T) {
	manager := newTestManager()

	token, jti, err := manager.GenerateAccessToken(42, "alice", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a non-empty JTI")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	manager := newTestManager()

	token, _, err := manager.GenerateRefreshToken(7, "bob", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := newTestManager()
	other := NewJWTManager(JWTConfig{Secret: "a-different-secret"})

	token, _, err := manager.GenerateAccessToken(1, "carol", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	manager := NewJWTManager(JWTConfig{
		Secret: "test-secret-key",
		Expiry: -time.Minute,
	})

	token, _, err := manager.GenerateAccessToken(1, "dave", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken on expired token = %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	manager := newTestManager()
	if _, err := manager.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken(garbage) = %v, want ErrInvalidToken", err)
	}
}

func TestDefaultExpiry(t *testing.T) {
	manager := newTestManager()
	if got := manager.AccessExpiry(); got != AccessTokenTTL {
		t.Errorf("AccessExpiry = %v, want %v", got, AccessTokenTTL)
	}
}

func TestExtractClaimsWithoutValidation(t *testing.T) {
	manager := newTestManager()

	token, _, err := manager.GenerateAccessToken(9, "erin", 1)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	// ExtractClaims skips signature checks, so even a manager with a
	// different secret can read the payload.
	other := NewJWTManager(JWTConfig{Secret: "unrelated"})
	claims, err := other.ExtractClaims(token)
	if err != nil {
		t.Fatalf("ExtractClaims failed: %v", err)
	}
	if claims.UserID != 9 || claims.Username != "erin" {
		t.Errorf("claims = %d/%q, want 9/erin", claims.UserID, claims.Username)
	}
}
