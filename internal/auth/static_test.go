package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestStaticAuthorizer(t *testing.T) {
	a := NewStaticAuthorizer("tok-1=alice, tok-2=bob,,broken,=nouser,notoken=")

	ctx := context.Background()
	u, err := a.Authorize(ctx, "tok-1")
	if err != nil || u.UserID != "alice" {
		t.Fatalf("tok-1: u=%+v err=%v", u, err)
	}
	u, err = a.Authorize(ctx, "tok-2")
	if err != nil || u.UserID != "bob" {
		t.Fatalf("tok-2: u=%+v err=%v", u, err)
	}
	for _, tok := range []string{"broken", "", "nouser", "tok-3"} {
		if _, err := a.Authorize(ctx, tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestDevAuthorizer(t *testing.T) {
	a := NewDevAuthorizer()
	u, err := a.Authorize(context.Background(), LocalDevToken)
	if err != nil || u.UserID != LocalDevUserID {
		t.Fatalf("dev token: u=%+v err=%v", u, err)
	}
	if _, err := a.Authorize(context.Background(), "other"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unknown token: want ErrInvalidToken, got %v", err)
	}
}

func TestExtractBearer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if _, err := ExtractBearer(r); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("missing header: %v", err)
	}

	r.Header.Set("Authorization", "Basic abc")
	if _, err := ExtractBearer(r); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("non-bearer scheme: %v", err)
	}

	r.Header.Set("Authorization", "Bearer tok-42")
	tok, err := ExtractBearer(r)
	if err != nil || tok != "tok-42" {
		t.Fatalf("bearer: tok=%q err=%v", tok, err)
	}
}
