package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
)

func TestRegisterLoginAndVerify(t *testing.T) {
	h := newHarness(t)
	svc := NewAuthService(h.db, h.log, h.users, "test-secret", time.Hour)

	u, tok, err := svc.Register(h.dbc, RegisterInput{Username: "ada", Email: "Ada@Example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" || tok == "" {
		t.Fatalf("register: email=%q token empty=%v", u.Email, tok == "")
	}
	if u.Password == "s3cret-pass" {
		t.Fatalf("password stored in clear")
	}

	_, _, err = svc.Register(h.dbc, RegisterInput{Username: "ada2", Email: "ada@example.com", Password: "x"})
	wantStatus(t, err, http.StatusBadRequest)

	_, _, err = svc.Login(h.dbc, "ada@example.com", "wrong")
	wantStatus(t, err, http.StatusUnauthorized)

	_, tok, err = svc.Login(h.dbc, "ada@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx, err := svc.SetContextFromToken(h.ctx, tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != u.ID {
		t.Fatalf("request data: want user_id=%d got=%+v", u.ID, rd)
	}

	other := NewAuthService(h.db, h.log, h.users, "other-secret", time.Hour)
	_, err = other.SetContextFromToken(h.ctx, tok)
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestExpiredTokenRejected(t *testing.T) {
	h := newHarness(t)
	svc := NewAuthService(h.db, h.log, h.users, "test-secret", time.Hour).(*authService)
	u, _, err := svc.Register(h.dbc, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw-pw-pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	svc.accessTTL = -time.Minute
	tok, err := svc.generateAccessToken(u)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	_, err = svc.SetContextFromToken(h.ctx, tok)
	wantStatus(t, err, http.StatusUnauthorized)
}
