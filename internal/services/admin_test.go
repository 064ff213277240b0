package services

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
)

func TestAdminDashboard(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedAdmin(t, h.ctx, h.db, "admin")
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	testutil.SeedUser(t, h.ctx, h.db, "plain")
	testutil.SeedLesson(t, h.ctx, h.db, publisher.ID, 10, false)
	testutil.SeedBlogPost(t, h.ctx, h.db, admin.ID, "p1", types.BlogPublished)
	testutil.SeedJob(t, h.ctx, h.db, admin.ID, "j1", types.JobOpen)
	testutil.SeedJob(t, h.ctx, h.db, admin.ID, "j2", types.JobClosed)

	d, err := h.adminService().Dashboard(h.dbc)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Users.Total != 3 || d.Users.Admins != 1 || d.Users.Publishers != 1 {
		t.Fatalf("users: got total=%d admins=%d publishers=%d", d.Users.Total, d.Users.Admins, d.Users.Publishers)
	}
	if d.Content.Lessons != 1 || d.Content.BlogPosts != 1 {
		t.Fatalf("content: got lessons=%d posts=%d", d.Content.Lessons, d.Content.BlogPosts)
	}
	if d.Jobs.Total != 2 || d.Jobs.Open != 1 || len(d.Jobs.Recent) != 2 {
		t.Fatalf("jobs: got total=%d open=%d recent=%d", d.Jobs.Total, d.Jobs.Open, len(d.Jobs.Recent))
	}
	if len(d.Users.Recent) != 3 {
		t.Fatalf("recent users: want=3 got=%d", len(d.Users.Recent))
	}
}

func TestAdminUserRoles(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedAdmin(t, h.ctx, h.db, "admin")
	other := testutil.SeedAdmin(t, h.ctx, h.db, "other")
	plain := testutil.SeedUser(t, h.ctx, h.db, "plain")
	svc := h.adminService()

	_, err := svc.SetAdmin(h.dbc, admin.ID, admin.ID, false)
	wantStatus(t, err, http.StatusBadRequest)

	u, err := svc.SetPublisher(h.dbc, plain.ID, true)
	if err != nil {
		t.Fatalf("SetPublisher: %v", err)
	}
	if !u.IsPublisher {
		t.Fatalf("is_publisher: want true")
	}

	err = svc.DeleteUser(h.dbc, other.ID)
	wantStatus(t, err, http.StatusBadRequest)
	if err := svc.DeleteUser(h.dbc, plain.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	_, err = svc.GetUser(h.dbc, plain.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestAdminDeleteUserRefusesWhileOwningRows(t *testing.T) {
	h := newHarness(t)
	svc := h.adminService()
	instructor := testutil.SeedPublisher(t, h.ctx, h.db, "instructor")
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	lesson := testutil.SeedLesson(t, h.ctx, h.db, instructor.ID, 10, false)
	testutil.SeedEnrollment(t, h.ctx, h.db, student.ID, lesson.ID, types.EnrollmentActive)

	for _, u := range []*types.User{instructor, student} {
		err := svc.DeleteUser(h.dbc, u.ID)
		wantStatus(t, err, http.StatusBadRequest)
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) || apiErr.Code != "user_has_dependents" {
			t.Fatalf("DeleteUser(%s): want user_has_dependents got=%v", u.Username, err)
		}
		if _, err := svc.GetUser(h.dbc, u.ID); err != nil {
			t.Fatalf("GetUser(%s) after refused delete: %v", u.Username, err)
		}
	}
	l, _ := h.lessons.GetByID(h.dbc, lesson.ID)
	if l == nil {
		t.Fatalf("lesson should survive a refused delete")
	}
}

func TestAdminDeleteUserRemovesPersonalRows(t *testing.T) {
	h := newHarness(t)
	author := testutil.SeedUser(t, h.ctx, h.db, "author")
	reader := testutil.SeedUser(t, h.ctx, h.db, "reader")
	post := testutil.SeedBlogPost(t, h.ctx, h.db, author.ID, "p1", types.BlogPublished)

	if _, err := h.blogService().ToggleLike(h.dbc, post.ID, reader.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	acct := &types.SocialAccount{UserID: reader.ID, Platform: types.PlatformTwitter, AccessToken: "tok", IsActive: true, ConnectedAt: time.Now().UTC()}
	if err := h.accounts.Create(h.dbc, acct); err != nil {
		t.Fatalf("Create account: %v", err)
	}

	if err := h.adminService().DeleteUser(h.dbc, reader.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	for table, want := range map[string]int64{"blog_likes": 0, "social_accounts": 0} {
		var n int64
		if err := h.db.Table(table).Where("user_id = ?", reader.ID).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != want {
			t.Fatalf("%s rows: want=%d got=%d", table, want, n)
		}
	}
	p, _ := h.posts.GetByID(h.dbc, post.ID)
	if p.LikeCount != 0 {
		t.Fatalf("like_count: want=0 got=%d", p.LikeCount)
	}
}

func TestAdminPagination(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		testutil.SeedUser(t, h.ctx, h.db, name)
	}
	page, err := h.adminService().ListUsers(h.dbc, 2, 2)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if page.Total != 5 || page.Pages != 3 || len(page.Items) != 2 {
		t.Fatalf("page: total=%d pages=%d items=%d", page.Total, page.Pages, len(page.Items))
	}
}

func TestNormalizePage(t *testing.T) {
	for _, tc := range []struct {
		page, limit, wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, 5, 1, 5},
		{2, 500, 2, maxPageSize},
	} {
		p, l := normalizePage(tc.page, tc.limit, 20)
		if p != tc.wantPage || l != tc.wantLimit {
			t.Fatalf("normalizePage(%d,%d): want=(%d,%d) got=(%d,%d)", tc.page, tc.limit, tc.wantPage, tc.wantLimit, p, l)
		}
	}
	if got := pageCount(41, 20); got != 3 {
		t.Fatalf("pageCount: want=3 got=%d", got)
	}
}
