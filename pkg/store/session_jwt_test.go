package store

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func newTestSessionStore(t *testing.T, opts JWTOptions) *JWTSessionStore {
	t.Helper()
	s, err := NewJWTSessionStore("test-secret-0123456789", time.Hour, opts)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	return s
}

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	s := newTestSessionStore(t, JWTOptions{})
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	userID, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok {
		t.Fatalf("validate token: ok=%v err=%v", ok, err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestJWTSessionStoreRejectsWrongSecret(t *testing.T) {
	s := newTestSessionStore(t, JWTOptions{})
	other, err := NewJWTSessionStore("another-secret-entirely", time.Hour, JWTOptions{})
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, err := other.GetUserIDByToken(token); err == nil || ok {
		t.Fatalf("expected signature mismatch to fail, ok=%v err=%v", ok, err)
	}
}

func TestJWTSessionStoreEnforcesAudience(t *testing.T) {
	signing := newTestSessionStore(t, JWTOptions{Issuer: "issuer-a", Audience: "aud-a"})
	verify := newTestSessionStore(t, JWTOptions{Issuer: "issuer-a", Audience: "aud-b"})
	token, err := signing.NewSession("user-claim")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, _, err := verify.GetUserIDByToken(token); err == nil {
		t.Fatalf("expected audience mismatch to fail")
	}
}

func TestJWTSessionStoreRejectsExpiredToken(t *testing.T) {
	s := newTestSessionStore(t, JWTOptions{Leeway: time.Millisecond})
	now := time.Now().UTC().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "user-old",
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        "expired",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, ok, err := s.GetUserIDByToken(token); err == nil || ok {
		t.Fatalf("expected expired token to fail, ok=%v err=%v", ok, err)
	}
}

func TestJWTSessionStoreRejectsUnsignedAlg(t *testing.T) {
	s := newTestSessionStore(t, JWTOptions{})
	claims := jwt.RegisteredClaims{
		Subject:   "user-none",
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, ok, err := s.GetUserIDByToken(token); err == nil || ok {
		t.Fatalf("expected none-alg token to fail, ok=%v err=%v", ok, err)
	}
}

func TestJWTSessionStoreRejectsGarbage(t *testing.T) {
	s := newTestSessionStore(t, JWTOptions{})
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, ok, err := s.GetUserIDByToken(token); err == nil || ok {
			t.Fatalf("expected token %q to fail, ok=%v err=%v", token, ok, err)
		}
	}
}
