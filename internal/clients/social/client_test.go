package social

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(log, Config{
		FacebookBaseURL: srv.URL,
		TwitterBaseURL:  srv.URL,
		LinkedInBaseURL: srv.URL,
	})
}

func decode(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, _ := io.ReadAll(r.Body)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestPostFacebook(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v18.0/me/feed" {
			t.Errorf("path: want=/v18.0/me/feed got=%s", r.URL.Path)
		}
		body = decode(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"fb_123"}`))
	}))
	defer srv.Close()

	id, err := newTestClient(t, srv).PostFacebook(context.Background(), "tok", "hello", "https://app/podcasts/1")
	if err != nil {
		t.Fatalf("PostFacebook: %v", err)
	}
	if id != "fb_123" {
		t.Fatalf("id: want=fb_123 got=%s", id)
	}
	if body["access_token"] != "tok" || body["link"] != "https://app/podcasts/1" {
		t.Fatalf("body: got=%v", body)
	}
}

func TestPostFacebookErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token."}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).PostFacebook(context.Background(), "bad", "m", "l")
	if err == nil || err.Error() != "Invalid OAuth access token." {
		t.Fatalf("err: want=Invalid OAuth access token. got=%v", err)
	}
}

func TestPostTweet(t *testing.T) {
	var auth string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body = decode(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"tw_9","text":"x"}}`))
	}))
	defer srv.Close()

	id, err := newTestClient(t, srv).PostTweet(context.Background(), "tok", "hi\nlink")
	if err != nil {
		t.Fatalf("PostTweet: %v", err)
	}
	if id != "tw_9" {
		t.Fatalf("id: want=tw_9 got=%s", id)
	}
	if auth != "Bearer tok" {
		t.Fatalf("auth: want=Bearer tok got=%s", auth)
	}
	if body["text"] != "hi\nlink" {
		t.Fatalf("text: got=%v", body["text"])
	}
}

func TestPostTweetErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You are not permitted to perform this action."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).PostTweet(context.Background(), "tok", "t")
	if err == nil || err.Error() != "You are not permitted to perform this action." {
		t.Fatalf("err: got=%v", err)
	}
}

func TestPostLinkedIn(t *testing.T) {
	var body map[string]any
	var restli string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/ugcPosts" {
			t.Errorf("path: want=/v2/ugcPosts got=%s", r.URL.Path)
		}
		restli = r.Header.Get("X-Restli-Protocol-Version")
		body = decode(t, r)
		w.Header().Set("x-restli-id", "urn:li:share:42")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	id, err := newTestClient(t, srv).PostLinkedIn(context.Background(), "tok", LinkedInArticle{
		AuthorID:   "abc",
		Commentary: "msg",
		URL:        "https://app/podcasts/1",
		Title:      "Ep",
	})
	if err != nil {
		t.Fatalf("PostLinkedIn: %v", err)
	}
	if id != "urn:li:share:42" {
		t.Fatalf("id: want=urn:li:share:42 got=%s", id)
	}
	if restli != "2.0.0" {
		t.Fatalf("restli header: want=2.0.0 got=%s", restli)
	}
	if body["author"] != "urn:li:person:abc" {
		t.Fatalf("author: got=%v", body["author"])
	}
}
