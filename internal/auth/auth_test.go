package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-booking-client/internal/model"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "Secret123!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "secret123!") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	tok, err := iss.MakeToken(&model.User{ID: 42, Role: model.RoleDoctor})
	if err != nil {
		t.Fatal(err)
	}
	c, err := iss.ParseToken(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := c.UserID()
	if err != nil || id != 42 {
		t.Errorf("uid: %d %v", id, err)
	}
	if c.Role != model.RoleDoctor {
		t.Errorf("role: %s", c.Role)
	}
}

func TestParseTokenRejects(t *testing.T) {
	iss := NewIssuer("test-secret", time.Minute)
	good, _ := iss.MakeToken(&model.User{ID: 1, Role: model.RolePatient})

	other, _ := NewIssuer("other-secret", time.Minute).MakeToken(&model.User{ID: 1})

	expiredIss := NewIssuer("test-secret", time.Minute)
	expiredIss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := expiredIss.MakeToken(&model.User{ID: 1})

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", other},
		{"expired", expired},
		{"alg none", none},
		{"tampered", good + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iss.ParseToken(tt.raw); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClaimsBadSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	if _, err := c.UserID(); err != ErrBadToken {
		t.Errorf("got %v", err)
	}
}
