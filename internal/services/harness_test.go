package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	blogrepo "github.com/edulearn/edulearn-backend/internal/data/repos/blog"
	careersrepo "github.com/edulearn/edulearn-backend/internal/data/repos/careers"
	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	mediarepo "github.com/edulearn/edulearn-backend/internal/data/repos/media"
	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type fakeNotifier struct {
	mu           sync.Mutex
	enrollments  []*types.LessonEnrollment
	completions  []*types.LessonEnrollment
	podcasts     []*types.Podcast
	applications []*types.JobApplication
}

func (f *fakeNotifier) EnrollmentCreated(_ context.Context, _ *types.Lesson, e *types.LessonEnrollment, _ *types.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrollments = append(f.enrollments, e)
}

func (f *fakeNotifier) LessonCompleted(_ context.Context, e *types.LessonEnrollment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, e)
}

func (f *fakeNotifier) PodcastPublished(_ context.Context, p *types.Podcast, _ *ShareResults) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.podcasts = append(f.podcasts, p)
}

func (f *fakeNotifier) ApplicationStatusChanged(_ context.Context, a *types.JobApplication) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applications = append(f.applications, a)
}

type harness struct {
	db     *gorm.DB
	log    *logger.Logger
	ctx    context.Context
	dbc    dbctx.Context
	notify *fakeNotifier

	users        userrepo.UserRepo
	lessons      learningrepo.LessonRepo
	modules      learningrepo.ModuleRepo
	contents     learningrepo.ContentRepo
	enrollments  learningrepo.EnrollmentRepo
	progress     learningrepo.ProgressRepo
	payments     learningrepo.PaymentRepo
	podcasts     mediarepo.PodcastRepo
	accounts     mediarepo.SocialAccountRepo
	posts        blogrepo.PostRepo
	comments     blogrepo.CommentRepo
	likes        blogrepo.LikeRepo
	jobs         careersrepo.JobRepo
	applications careersrepo.ApplicationRepo

	access AccessService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		db:     db,
		log:    log,
		ctx:    context.Background(),
		notify: &fakeNotifier{},

		users:        userrepo.NewUserRepo(db, log),
		lessons:      learningrepo.NewLessonRepo(db, log),
		modules:      learningrepo.NewModuleRepo(db, log),
		contents:     learningrepo.NewContentRepo(db, log),
		enrollments:  learningrepo.NewEnrollmentRepo(db, log),
		progress:     learningrepo.NewProgressRepo(db, log),
		payments:     learningrepo.NewPaymentRepo(db, log),
		podcasts:     mediarepo.NewPodcastRepo(db, log),
		accounts:     mediarepo.NewSocialAccountRepo(db, log),
		posts:        blogrepo.NewPostRepo(db, log),
		comments:     blogrepo.NewCommentRepo(db, log),
		likes:        blogrepo.NewLikeRepo(db, log),
		jobs:         careersrepo.NewJobRepo(db, log),
		applications: careersrepo.NewApplicationRepo(db, log),
	}
	h.dbc = dbctx.Context{Ctx: h.ctx}
	h.access = NewAccessService(db, log, h.enrollments)
	return h
}

func (h *harness) enrollmentService() EnrollmentService {
	return NewEnrollmentService(h.db, h.log, h.lessons, h.enrollments, h.payments, StubGateway{}, h.notify)
}

func (h *harness) progressService() ProgressService {
	return NewProgressService(h.db, h.log, h.access, h.lessons, h.contents, h.enrollments, h.progress, h.notify)
}

func (h *harness) lessonService() LessonService {
	return NewLessonService(h.db, h.log, h.access, h.users, h.lessons, h.modules, h.contents, h.enrollments)
}

func (h *harness) blogService() BlogService {
	return NewBlogService(h.db, h.log, h.users, h.posts, h.comments, h.likes)
}

func (h *harness) jobService() JobService {
	return NewJobService(h.db, h.log, h.jobs, h.applications, h.notify)
}

func (h *harness) adminService() AdminService {
	return NewAdminService(h.db, h.log, h.users, h.lessons, h.posts, h.jobs, h.applications, h.notify)
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	if got := apierr.StatusOf(err); got != status {
		t.Fatalf("status: want=%d got=%d (err=%v)", status, got, err)
	}
}
