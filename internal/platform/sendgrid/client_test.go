package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestSendPostsMailPayload(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(testLogger(t), Config{
		APIKey:           "SG.key",
		BaseURL:          srv.URL,
		DefaultFromEmail: "noreply@edulearn.test",
		DefaultFromName:  "EduLearn",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      EmailAddress{Email: "ada@example.com", Name: "ada"},
		Subject: "Receipt",
		Text:    "thanks",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/v3/mail/send" {
		t.Fatalf("path: want=/v3/mail/send got=%s", gotPath)
	}
	if gotAuth != "Bearer SG.key" {
		t.Fatalf("auth: want=Bearer SG.key got=%s", gotAuth)
	}
	if res.StatusCode != http.StatusAccepted || res.MessageID != "msg-1" {
		t.Fatalf("result: got=%+v", res)
	}
	from, _ := gotBody["from"].(map[string]any)
	if from["email"] != "noreply@edulearn.test" {
		t.Fatalf("from: want=noreply@edulearn.test got=%v", from["email"])
	}
	if gotBody["subject"] != "Receipt" {
		t.Fatalf("subject: want=Receipt got=%v", gotBody["subject"])
	}
}

func TestSendReturnsHTTPErrorWithoutRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer srv.Close()

	c, _ := New(testLogger(t), Config{APIKey: "k", BaseURL: srv.URL, DefaultFromEmail: "a@b.c", MaxRetries: 3})
	_, err := c.Send(context.Background(), SendEmailRequest{
		To:      EmailAddress{Email: "x@example.com"},
		Subject: "s",
		Text:    "t",
	})
	if err == nil || !strings.Contains(err.Error(), "bad from") {
		t.Fatalf("err: want bad from got=%v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls: want=1 got=%d", n)
	}
}

func TestSendValidatesRequest(t *testing.T) {
	c, _ := New(testLogger(t), Config{APIKey: "k", DefaultFromEmail: "a@b.c"})
	if _, err := c.Send(context.Background(), SendEmailRequest{Subject: "s", Text: "t"}); err == nil {
		t.Fatalf("expected error for missing recipient")
	}
	if _, err := c.Send(context.Background(), SendEmailRequest{To: EmailAddress{Email: "x@y.z"}, Text: "t"}); err == nil {
		t.Fatalf("expected error for missing subject")
	}
}

func TestNewFromConfigWithoutKeyIsNop(t *testing.T) {
	c := NewFromConfig(testLogger(t), Config{})
	if _, ok := c.(Nop); !ok {
		t.Fatalf("client: want=Nop got=%T", c)
	}
}
