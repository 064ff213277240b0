package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
)

type fakeExpirer struct {
	calls int
	at    time.Time
	n     int64
	err   error
}

func (f *fakeExpirer) ExpireDue(dbc dbctx.Context, now time.Time) (int64, error) {
	f.calls++
	f.at = now
	return f.n, f.err
}

type fakePublisher struct {
	calls int
	n     int
	err   error
}

func (f *fakePublisher) PublishDue(dbc dbctx.Context, now time.Time) (int, error) {
	f.calls++
	return f.n, f.err
}

func TestRunsUseSchedulerClock(t *testing.T) {
	exp := &fakeExpirer{n: 3}
	pub := &fakePublisher{n: 2}
	s, err := New(testutil.Logger(t), Config{}, exp, pub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if got := s.RunEnrollmentExpiry(context.Background()); got != 3 {
		t.Fatalf("expired want=3 got=%d", got)
	}
	if !exp.at.Equal(fixed) {
		t.Fatalf("clock want=%v got=%v", fixed, exp.at)
	}
	if got := s.RunPodcastPublishing(context.Background()); got != 2 {
		t.Fatalf("published want=2 got=%d", got)
	}
}

func TestRunFailureIsNotFatal(t *testing.T) {
	exp := &fakeExpirer{err: errors.New("db down")}
	s, err := New(testutil.Logger(t), Config{}, exp, &fakePublisher{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.RunEnrollmentExpiry(context.Background()); got != 0 {
		t.Fatalf("want=0 got=%d", got)
	}
	if got := s.RunEnrollmentExpiry(context.Background()); got != 0 || exp.calls != 2 {
		t.Fatalf("second run calls=%d got=%d", exp.calls, got)
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(testutil.Logger(t), Config{EnrollmentExpiryCron: "every now and then"}, &fakeExpirer{}, nil)
	if err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(testutil.Logger(t), Config{}, &fakeExpirer{}, &fakePublisher{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n := len(s.cron.Entries()); n != 2 {
		t.Fatalf("entries want=2 got=%d", n)
	}
	s.Start()
	select {
	case <-s.Stop().Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("stop did not finish")
	}
}

type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingPublisher) PublishDue(dbc dbctx.Context, now time.Time) (int, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return 1, nil
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	pub := &blockingPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s, err := New(testutil.Logger(t), Config{}, nil, pub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entries := s.cron.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	job := entries[0].WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-pub.entered

	// second tick while the first run is still blocked
	job.Run()
	if got := pub.calls.Load(); got != 1 {
		t.Fatalf("calls during overlap: want=1 got=%d", got)
	}

	close(pub.release)
	<-done
}
