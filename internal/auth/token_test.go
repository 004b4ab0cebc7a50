package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Data{Sub: "user-1", Role: "author", Version: 3}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	data, err := ParseToken(secret, issued)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if data.Sub != "user-1" || data.Role != "author" || data.Version != 3 {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Data{Sub: "user-1", Role: "reader"}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := ParseToken(secret, issued); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("ParseToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestParseTokenRejectsWrongSecretAndGarbage(t *testing.T) {
	issued, err := IssueToken([]byte("secret"), Data{Sub: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := ParseToken([]byte("other"), issued); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: error = %v, want ErrInvalidToken", err)
	}
	if _, err := ParseToken([]byte("secret"), strings.Repeat("x", 20)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: error = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenRequiresSubject(t *testing.T) {
	issued, err := IssueToken([]byte("secret"), Data{Role: "reader"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := ParseToken([]byte("secret"), issued); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}
