package services

import (
	"testing"
	"time"

	"task-platform/backend/internal/config"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BCryptCost:      bcrypt.MinCost,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	service := NewAuthService(testAuthConfig())

	hashed, err := service.HashPassword("SecurePass1")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hashed == "SecurePass1" {
		t.Error("Expected password to be hashed, got plaintext")
	}

	if !service.VerifyPassword(hashed, "SecurePass1") {
		t.Error("Expected correct password to verify")
	}

	if service.VerifyPassword(hashed, "WrongPass1") {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	service := NewAuthService(testAuthConfig())
	userID := uuid.Must(uuid.NewV4())

	token, err := service.IssueAccessToken(userID, "admin")
	if err != nil {
		t.Fatalf("Failed to issue access token: %v", err)
	}

	claims, err := service.DecodeToken(token)
	if err != nil {
		t.Fatalf("Failed to decode token: %v", err)
	}

	if claims.Subject != userID {
		t.Errorf("Expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("Expected role admin, got %s", claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("Expected token type %s, got %s", TokenTypeAccess, claims.TokenType)
	}
}

func TestIssueRefreshToken_CarriesNoRole(t *testing.T) {
	service := NewAuthService(testAuthConfig())
	userID := uuid.Must(uuid.NewV4())

	token, err := service.IssueRefreshToken(userID)
	if err != nil {
		t.Fatalf("Failed to issue refresh token: %v", err)
	}

	claims, err := service.DecodeToken(token)
	if err != nil {
		t.Fatalf("Failed to decode token: %v", err)
	}

	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("Expected token type %s, got %s", TokenTypeRefresh, claims.TokenType)
	}
	if claims.Role != "" {
		t.Errorf("Expected refresh token to carry no role, got %s", claims.Role)
	}
}

func TestDecodeToken_WrongSecret(t *testing.T) {
	service := NewAuthService(testAuthConfig())
	userID := uuid.Must(uuid.NewV4())

	token, err := service.IssueAccessToken(userID, "user")
	if err != nil {
		t.Fatalf("Failed to issue access token: %v", err)
	}

	otherConfig := testAuthConfig()
	otherConfig.JWTSecret = "different-secret"
	other := NewAuthService(otherConfig)

	if _, err := other.DecodeToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestDecodeToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTokenTTL = -time.Minute
	service := NewAuthService(cfg)

	token, err := service.IssueAccessToken(uuid.Must(uuid.NewV4()), "user")
	if err != nil {
		t.Fatalf("Failed to issue access token: %v", err)
	}

	if _, err := service.DecodeToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestDecodeToken_Malformed(t *testing.T) {
	service := NewAuthService(testAuthConfig())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := service.DecodeToken(token); err != ErrInvalidToken {
			t.Errorf("Expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestLoginUser(t *testing.T) {
	db := newTestDB(t)
	service := NewAuthService(testAuthConfig())

	hashed, err := service.HashPassword("SecurePass1")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := createTestUser(t, db, "login@example.com", "loginuser")
	if err := db.Model(user).Update("password", hashed).Error; err != nil {
		t.Fatalf("Failed to set password: %v", err)
	}

	found, err := service.LoginUser(db, "login@example.com", "SecurePass1")
	if err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, found.ID)
	}

	if _, err := service.LoginUser(db, "login@example.com", "WrongPass1"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	if _, err := service.LoginUser(db, "nobody@example.com", "SecurePass1"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
