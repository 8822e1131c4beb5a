package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Error("NewTokenService() with a short secret expected error, got nil")
	}
}

func TestGenerateAndValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("johndoe")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	username, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if username != "johndoe" {
		t.Errorf("Validate() username = %q, want %q", username, "johndoe")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("johndoe", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Error("Validate() of an expired token expected error, got nil")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("johndoe")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	other, err := NewTokenService("a-completely-different-secret")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	if _, err := other.Validate(token); err == nil {
		t.Error("Validate() with the wrong secret expected error, got nil")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, input := range []string{"", "not.a.token", "a.b"} {
		if _, err := ts.Validate(input); err == nil {
			t.Errorf("Validate(%q) expected error, got nil", input)
		}
	}
}

func TestGenerate_UniqueTokenIDs(t *testing.T) {
	ts := newTestTokenService(t)

	// Two tokens minted in the same second still differ via the jti claim.
	t1, _ := ts.Generate("johndoe")
	t2, _ := ts.Generate("johndoe")

	if t1 == t2 {
		t.Error("Generate() produced identical tokens for consecutive calls")
	}
	if strings.Count(t1, ".") != 2 {
		t.Errorf("Generate() produced a malformed JWT: %q", t1)
	}
}
