package auth

import (
	"testing"
	"time"

	"github.com/your-org/asset-tracker/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Asset Tracker"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	j := NewJWTManager(testConfig())
	base := uint(2)

	token, err := j.GenerateAccessToken(7, "cmdr.hayes", "base_commander", &base)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := j.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "cmdr.hayes" || claims.Role != "base_commander" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.AssignedBaseID == nil || *claims.AssignedBaseID != 2 {
		t.Errorf("AssignedBaseID = %v, want 2", claims.AssignedBaseID)
	}
}

func TestTokenTypeEnforced(t *testing.T) {
	j := NewJWTManager(testConfig())

	refresh, err := j.GenerateRefreshToken(7, "cmdr.hayes")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if _, err := j.ValidateAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := j.ValidateRefreshToken(refresh); err != nil {
		t.Errorf("ValidateRefreshToken: %v", err)
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	j := NewJWTManager(testConfig())
	token, err := j.GenerateAccessToken(1, "admin", "admin", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := testConfig()
	other.JWT.Secret = "different-secret"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	if got := ExtractTokenFromHeader("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Errorf("ExtractTokenFromHeader = %q", got)
	}
	for _, header := range []string{"", "Bearer", "Basic abc", "bearer abc"} {
		if got := ExtractTokenFromHeader(header); got != "" {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want empty", header, got)
		}
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	p := NewPasswordManager(testConfig())

	hash, err := p.HashPassword("Valid1Password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := p.VerifyPassword("Valid1Password", hash); err != nil {
		t.Errorf("VerifyPassword: %v", err)
	}
	if err := p.VerifyPassword("WrongPassword1", hash); err == nil {
		t.Error("wrong password verified")
	}
}

func TestValidatePassword(t *testing.T) {
	p := NewPasswordManager(testConfig())

	weak := []string{
		"short1A",       // too short
		"alllowercase1", // no uppercase
		"ALLUPPERCASE1", // no lowercase
		"NoNumbersHere", // no digit
	}
	for _, pw := range weak {
		if err := p.ValidatePassword(pw); err == nil {
			t.Errorf("ValidatePassword(%q) accepted a weak password", pw)
		}
	}
	if err := p.ValidatePassword("Strong1Password"); err != nil {
		t.Errorf("ValidatePassword rejected a strong password: %v", err)
	}
}
