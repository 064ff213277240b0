package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edulearn/edulearn-backend/internal/clients/social"
	mediarepo "github.com/edulearn/edulearn-backend/internal/data/repos/media"
	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
)

type fakeSocial struct {
	SocialService
	shared []uint
}

func (f *fakeSocial) ShareToAll(_ dbctx.Context, _ uint, p *types.Podcast) *ShareResults {
	f.shared = append(f.shared, p.ID)
	return &ShareResults{
		Facebook: ShareResult{Error: "No Facebook account connected"},
		Twitter:  ShareResult{Success: true, PostID: "tw-9"},
		LinkedIn: ShareResult{Error: "No LinkedIn account connected"},
	}
}

func (h *harness) podcastService(social SocialService) PodcastService {
	return NewPodcastService(h.db, h.log, h.users, h.podcasts, social, h.notify)
}

func TestCreatePodcast(t *testing.T) {
	h := newHarness(t)
	plain := testutil.SeedUser(t, h.ctx, h.db, "plain")
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	svc := h.podcastService(&fakeSocial{})
	in := CreatePodcastInput{
		Title:       "Episode one",
		Description: "we talk about go",
		Type:        types.PodcastVideo,
		MediaURL:    "https://cdn.example.com/ep1.mp4",
		Duration:    120,
	}

	_, err := svc.Create(h.dbc, plain.ID, in)
	wantStatus(t, err, http.StatusForbidden)

	p, err := svc.Create(h.dbc, publisher.ID, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ThumbnailURL != in.MediaURL {
		t.Fatalf("thumbnail: want=%q got=%q", in.MediaURL, p.ThumbnailURL)
	}
	if !p.AutoShareOnPublish || p.Status != types.PodcastDraft {
		t.Fatalf("defaults: auto_share=%v status=%s", p.AutoShareOnPublish, p.Status)
	}

	in.ScheduledFor = testutil.PtrTime(time.Now().Add(time.Hour))
	scheduled, err := svc.Create(h.dbc, publisher.ID, in)
	if err != nil {
		t.Fatalf("Create scheduled: %v", err)
	}
	if scheduled.Status != types.PodcastScheduled {
		t.Fatalf("status: want=%s got=%s", types.PodcastScheduled, scheduled.Status)
	}
}

func TestPublishPodcastSharesAndStoresResults(t *testing.T) {
	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	other := testutil.SeedPublisher(t, h.ctx, h.db, "other")
	p := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastDraft)
	p.AutoShareOnPublish = true
	if err := h.podcasts.Update(h.dbc, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fs := &fakeSocial{}
	svc := h.podcastService(fs)

	_, err := svc.Publish(h.dbc, p.ID, other.ID)
	wantStatus(t, err, http.StatusForbidden)

	out, err := svc.Publish(h.dbc, p.ID, publisher.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if out.Status != types.PodcastPublished || out.PublishedAt == nil {
		t.Fatalf("publish: status=%s published_at=%v", out.Status, out.PublishedAt)
	}
	if len(fs.shared) != 1 {
		t.Fatalf("shares: want=1 got=%d", len(fs.shared))
	}

	stored, _ := h.podcasts.GetByID(h.dbc, p.ID)
	var res ShareResults
	if err := json.Unmarshal(stored.SocialShareData, &res); err != nil {
		t.Fatalf("decode social_share_data: %v", err)
	}
	if !res.Twitter.Success || res.Twitter.PostID != "tw-9" || res.Facebook.Success {
		t.Fatalf("stored results: got %+v", res)
	}
	if len(h.notify.podcasts) != 1 {
		t.Fatalf("publish events: want=1 got=%d", len(h.notify.podcasts))
	}
}

func TestPublishDueScheduledPodcasts(t *testing.T) {
	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	due := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastScheduled)
	due.ScheduledFor = testutil.PtrTime(time.Now().Add(-time.Minute))
	later := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastScheduled)
	later.ScheduledFor = testutil.PtrTime(time.Now().Add(time.Hour))
	for _, p := range []*types.Podcast{due, later} {
		if err := h.podcasts.Update(h.dbc, p); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	fs := &fakeSocial{}

	n, err := h.podcastService(fs).PublishDue(h.dbc, time.Now())
	if err != nil {
		t.Fatalf("PublishDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("published: want=1 got=%d", n)
	}
	got, _ := h.podcasts.GetByID(h.dbc, due.ID)
	if got.Status != types.PodcastPublished {
		t.Fatalf("due status: want=%s got=%s", types.PodcastPublished, got.Status)
	}
	got, _ = h.podcasts.GetByID(h.dbc, later.ID)
	if got.Status != types.PodcastScheduled {
		t.Fatalf("later status: want=%s got=%s", types.PodcastScheduled, got.Status)
	}
	if len(fs.shared) != 0 {
		t.Fatalf("seeded podcasts have auto-share off, got %d shares", len(fs.shared))
	}
}

func TestConcurrentPublishDueSharesOnce(t *testing.T) {
	var tweets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/2/tweets" {
			n := tweets.Add(1)
			_, _ = w.Write([]byte(`{"data":{"id":"tw-` + strconv.Itoa(int(n)) + `"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	client := social.New(h.log, social.Config{TwitterBaseURL: srv.URL, Timeout: 2 * time.Second})
	socialSvc := NewSocialService(h.db, h.log, h.accounts, client, "https://edulearn.test")
	if _, err := socialSvc.Connect(h.dbc, publisher.ID, ConnectAccountInput{Platform: types.PlatformTwitter, AccessToken: "tok"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	for i := 0; i < 2; i++ {
		p := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastScheduled)
		p.ScheduledFor = testutil.PtrTime(time.Now().Add(-time.Minute))
		p.AutoShareOnPublish = true
		if err := h.podcasts.Update(h.dbc, p); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	svc := h.podcastService(socialSvc)

	var wg sync.WaitGroup
	counts := make([]int, 2)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := svc.PublishDue(h.dbc, time.Now())
			if err != nil {
				t.Errorf("PublishDue: %v", err)
			}
			counts[i] = n
		}(i)
	}
	wg.Wait()

	if total := counts[0] + counts[1]; total != 2 {
		t.Fatalf("published across runs: want=2 got=%d (%v)", total, counts)
	}
	if got := tweets.Load(); got != 2 {
		t.Fatalf("tweets: want=2 got=%d", got)
	}
}

func TestPublishWithStaleStatusIsRejected(t *testing.T) {
	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	p := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastScheduled)
	stale := *p
	fs := &fakeSocial{}
	svc := h.podcastService(fs).(*podcastService)

	if err := svc.publish(h.dbc, p); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := svc.publish(h.dbc, &stale); !errors.Is(err, errPublishTaken) {
		t.Fatalf("stale publish: want errPublishTaken got=%v", err)
	}
	if len(h.notify.podcasts) != 1 {
		t.Fatalf("publish events: want=1 got=%d", len(h.notify.podcasts))
	}
}

func TestPodcastListensAndLikes(t *testing.T) {
	h := newHarness(t)
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	p := testutil.SeedPodcast(t, h.ctx, h.db, publisher.ID, types.PodcastPublished)
	svc := h.podcastService(&fakeSocial{})

	if _, err := svc.Get(h.dbc, p.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Like(h.dbc, p.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	got, _ := h.podcasts.GetByID(h.dbc, p.ID)
	if got.ListenCount != 1 || got.LikeCount != 1 {
		t.Fatalf("counters: listens=%d likes=%d", got.ListenCount, got.LikeCount)
	}
	_, err := svc.Get(h.dbc, 4242)
	wantStatus(t, err, http.StatusNotFound)

	page, err := svc.PagePublished(h.dbc, mediarepo.PodcastFilter{}, 1, 0)
	if err != nil {
		t.Fatalf("PagePublished: %v", err)
	}
	if page.Total != 1 || page.Pages != 1 {
		t.Fatalf("page: total=%d pages=%d", page.Total, page.Pages)
	}
}
