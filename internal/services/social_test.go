package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/edulearn/edulearn-backend/internal/clients/social"
	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	types "github.com/edulearn/edulearn-backend/internal/domain"
)

func TestFormatPodcastMessage(t *testing.T) {
	p := &types.Podcast{
		Type:        types.PodcastVideo,
		Title:       "Go in prod",
		Description: "Shipping services",
		Tags:        datatypes.JSONSlice[string]{"go lang", "backend"},
	}
	got := FormatPodcastMessage(p, 0)
	want := "🎥 Nouvelle vidéo: Go in prod\n\nShipping services\n\n#golang #backend"
	if got != want {
		t.Fatalf("message:\nwant=%q\ngot=%q", want, got)
	}

	p.Type = types.PodcastAudio
	p.Tags = nil
	if got := FormatPodcastMessage(p, 0); !strings.HasPrefix(got, "🎙️ Nouveau podcast: ") {
		t.Fatalf("audio prefix: got=%q", got)
	}

	p.Description = strings.Repeat("x", 400)
	short := FormatPodcastMessage(p, TwitterMaxLength)
	if n := len([]rune(short)); n != TwitterMaxLength-50+3 {
		t.Fatalf("truncated length: want=%d got=%d", TwitterMaxLength-50+3, n)
	}
	if !strings.HasSuffix(short, "...") {
		t.Fatalf("truncated suffix: got=%q", short[len(short)-5:])
	}
}

func TestShareToAll(t *testing.T) {
	var tweet map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/2/tweets":
			_ = json.NewDecoder(r.Body).Decode(&tweet)
			_, _ = w.Write([]byte(`{"data":{"id":"tw-1"}}`))
		case "/v2/ugcPosts":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"not enough permissions"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	client := social.New(h.log, social.Config{
		FacebookBaseURL: srv.URL,
		TwitterBaseURL:  srv.URL,
		LinkedInBaseURL: srv.URL,
		Timeout:         2 * time.Second,
	})
	svc := NewSocialService(h.db, h.log, h.accounts, client, "https://edulearn.test/")

	for _, platform := range []types.SocialPlatform{types.PlatformTwitter, types.PlatformLinkedIn} {
		if _, err := svc.Connect(h.dbc, publisher.ID, ConnectAccountInput{Platform: platform, AccessToken: "tok", PlatformUserID: "abc"}); err != nil {
			t.Fatalf("Connect(%s): %v", platform, err)
		}
	}

	p := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastPublished)
	res := svc.ShareToAll(h.dbc, publisher.ID, p)

	if res.Facebook.Success || res.Facebook.Error != "No Facebook account connected" {
		t.Fatalf("facebook: got %+v", res.Facebook)
	}
	if !res.Twitter.Success || res.Twitter.PostID != "tw-1" {
		t.Fatalf("twitter: got %+v", res.Twitter)
	}
	text, _ := tweet["text"].(string)
	if !strings.HasSuffix(text, "\nhttps://edulearn.test/podcasts/"+strconv.FormatUint(uint64(p.ID), 10)) {
		t.Fatalf("tweet text: got=%q", text)
	}
	if res.LinkedIn.Success || res.LinkedIn.Error != "not enough permissions" {
		t.Fatalf("linkedin: got %+v", res.LinkedIn)
	}
	if got := res.SuccessCount(); got != 1 {
		t.Fatalf("SuccessCount: want=1 got=%d", got)
	}
}

func TestShareFacebookExpiredToken(t *testing.T) {
	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	svc := NewSocialService(h.db, h.log, h.accounts, social.New(h.log, social.Config{}), "https://edulearn.test")
	past := time.Now().Add(-time.Hour)
	if err := h.accounts.Create(h.dbc, &types.SocialAccount{
		UserID:      publisher.ID,
		Platform:    types.PlatformFacebook,
		AccessToken: "tok",
		ExpiresAt:   &past,
		IsActive:    true,
		ConnectedAt: past,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastPublished)
	res := svc.(*socialService).shareFacebook(h.dbc, publisher.ID, p)
	if res.Success || res.Error != "Facebook token expired" {
		t.Fatalf("facebook: got %+v", res)
	}
}

func TestConnectReplacesPreviousAccount(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "user")
	svc := NewSocialService(h.db, h.log, h.accounts, social.New(h.log, social.Config{}), "")

	for _, tok := range []string{"first", "second"} {
		if _, err := svc.Connect(h.dbc, u.ID, ConnectAccountInput{Platform: types.PlatformTwitter, AccessToken: tok, ExpiresIn: 3600}); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	accounts, err := svc.ListAccounts(h.dbc, u.ID)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("active accounts: want=1 got=%d", len(accounts))
	}
	active, _ := h.accounts.GetActive(h.dbc, u.ID, types.PlatformTwitter)
	if active.AccessToken != "second" || active.ExpiresAt == nil {
		t.Fatalf("active account: token=%q expires_at=%v", active.AccessToken, active.ExpiresAt)
	}

	if err := svc.Disconnect(h.dbc, u.ID, types.PlatformTwitter); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	accounts, _ = svc.ListAccounts(h.dbc, u.ID)
	if len(accounts) != 0 {
		t.Fatalf("after disconnect: want=0 got=%d", len(accounts))
	}

	_, err = svc.Connect(h.dbc, u.ID, ConnectAccountInput{Platform: "myspace", AccessToken: "x"})
	wantStatus(t, err, http.StatusBadRequest)
}
