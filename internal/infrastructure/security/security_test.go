package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "secret123" || !strings.HasPrefix(digest, "$2") {
		t.Fatalf("digest does not look like bcrypt: %q", digest)
	}
	if !h.Verify("secret123", digest) {
		t.Fatal("Verify rejected the right password")
	}
	if h.Verify("secret124", digest) {
		t.Fatal("Verify accepted a wrong password")
	}
	if h.Verify("", digest) || h.Verify("secret123", "") {
		t.Fatal("Verify accepted empty input")
	}
	if _, err := h.Hash(""); err == nil {
		t.Fatal("Hash accepted empty password")
	}
}

func TestNewBcryptHasher_OutOfRangeCostFallsBack(t *testing.T) {
	if got := NewBcryptHasher(99).cost; got != DefaultBcryptCost {
		t.Fatalf("cost = %d, want %d", got, DefaultBcryptCost)
	}
}

func TestJWTService_SignVerify(t *testing.T) {
	s, err := NewJWTService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	tok, claims, err := s.Sign("A001", "alice@x.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(claims.TokenID) != 32 {
		t.Fatalf("token id = %q, want 32 hex", claims.TokenID)
	}
	got, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.AccountNumber != "A001" || got.Email != "alice@x.com" || got.TokenID != claims.TokenID {
		t.Fatalf("claims mismatch: %+v", got)
	}
	if !got.ExpiresAt.Equal(claims.ExpiresAt) {
		t.Fatalf("exp = %v, want %v", got.ExpiresAt, claims.ExpiresAt)
	}
	if life := claims.ExpiresAt.Sub(claims.IssuedAt); life != time.Hour {
		t.Fatalf("token lifetime = %v, want the configured 1h", life)
	}
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	s, _ := NewJWTService("test-secret", time.Hour)
	other, _ := NewJWTService("other-secret", time.Hour)

	tok, _, _ := other.Sign("A001", "")
	if _, err := s.Verify(tok); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
	if _, err := s.Verify("not.a.jwt"); err == nil {
		t.Fatal("malformed token was accepted")
	}

	// expired: sign in the past
	past, _ := NewJWTService("test-secret", time.Minute)
	past.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, _ := past.Sign("A001", "")
	if _, err := s.Verify(old); err == nil {
		t.Fatal("expired token was accepted")
	}

	// unsigned alg=none
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"accountNumber": "A001", "iss": issuer})
	raw, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := s.Verify(raw); err == nil {
		t.Fatal("alg=none token was accepted")
	}
}

func TestNewJWTService_Validation(t *testing.T) {
	if _, err := NewJWTService("", time.Hour); err == nil {
		t.Fatal("empty secret accepted")
	}
	if _, err := NewJWTService("s", 0); err == nil {
		t.Fatal("zero ttl accepted")
	}
}
