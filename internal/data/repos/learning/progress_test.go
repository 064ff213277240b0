package learning

import (
	"context"
	"testing"
	"time"

	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
)

func TestAccumulateAddsTimeAndKeepsFirstCompletion(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewProgressRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	instructor := testutil.SeedPublisher(t, ctx, db, "instructor")
	student := testutil.SeedUser(t, ctx, db, "student")
	l := testutil.SeedLesson(t, ctx, db, instructor.ID, 10, false)
	mod := testutil.SeedModule(t, ctx, db, l.ID, 1)
	c := testutil.SeedContent(t, ctx, db, mod.ID, 1, false)

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row, err := repo.Accumulate(dbc, student.ID, c.ID, false, 20, t0)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if row.TimeSpent != 20 || row.IsCompleted || row.CompletedAt != nil {
		t.Fatalf("first row: got time=%d completed=%v completed_at=%v", row.TimeSpent, row.IsCompleted, row.CompletedAt)
	}

	t1 := t0.Add(time.Minute)
	row, err = repo.Accumulate(dbc, student.ID, c.ID, true, 15, t1)
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if row.TimeSpent != 35 {
		t.Fatalf("time_spent: want=35 got=%d", row.TimeSpent)
	}
	if !row.IsCompleted || row.CompletedAt == nil || !row.CompletedAt.Equal(t1) {
		t.Fatalf("completed_at: want=%v got=%v", t1, row.CompletedAt)
	}

	// a later completion does not move completed_at; is_completed follows the latest call
	row, err = repo.Accumulate(dbc, student.ID, c.ID, false, 5, t1.Add(time.Hour))
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if row.TimeSpent != 40 {
		t.Fatalf("time_spent: want=40 got=%d", row.TimeSpent)
	}
	if row.IsCompleted {
		t.Fatalf("is_completed: want=false got=true")
	}
	if row.CompletedAt == nil || !row.CompletedAt.Equal(t1) {
		t.Fatalf("completed_at: want=%v got=%v", t1, row.CompletedAt)
	}

	var n int64
	if err := db.Model(&types.LessonProgress{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
}

func TestCountCompletedInLessonScopesByUserAndLesson(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewProgressRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	now := time.Now().UTC()

	instructor := testutil.SeedPublisher(t, ctx, db, "instructor")
	student := testutil.SeedUser(t, ctx, db, "student")
	other := testutil.SeedUser(t, ctx, db, "other")

	l := testutil.SeedLesson(t, ctx, db, instructor.ID, 10, false)
	m1 := testutil.SeedModule(t, ctx, db, l.ID, 1)
	m2 := testutil.SeedModule(t, ctx, db, l.ID, 2)
	a := testutil.SeedContent(t, ctx, db, m1.ID, 1, false)
	b := testutil.SeedContent(t, ctx, db, m2.ID, 1, false)
	c := testutil.SeedContent(t, ctx, db, m2.ID, 2, false)

	otherLesson := testutil.SeedLesson(t, ctx, db, instructor.ID, 10, false)
	om := testutil.SeedModule(t, ctx, db, otherLesson.ID, 1)
	oc := testutil.SeedContent(t, ctx, db, om.ID, 1, false)

	for _, step := range []struct {
		user, content uint
		done          bool
	}{
		{student.ID, a.ID, true},
		{student.ID, b.ID, true},
		{student.ID, c.ID, false},
		{student.ID, oc.ID, true},
		{other.ID, c.ID, true},
	} {
		if _, err := repo.Accumulate(dbc, step.user, step.content, step.done, 1, now); err != nil {
			t.Fatalf("Accumulate: %v", err)
		}
	}

	got, err := repo.CountCompletedInLesson(dbc, student.ID, l.ID)
	if err != nil {
		t.Fatalf("CountCompletedInLesson: %v", err)
	}
	if got != 2 {
		t.Fatalf("student completed: want=2 got=%d", got)
	}
	got, _ = repo.CountCompletedInLesson(dbc, other.ID, l.ID)
	if got != 1 {
		t.Fatalf("other completed: want=1 got=%d", got)
	}
	got, _ = repo.CountCompletedInLesson(dbc, student.ID, otherLesson.ID)
	if got != 1 {
		t.Fatalf("other lesson completed: want=1 got=%d", got)
	}
}

func TestLockByUserAndLessonInsideTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	instructor := testutil.SeedPublisher(t, ctx, db, "instructor")
	student := testutil.SeedUser(t, ctx, db, "student")
	l := testutil.SeedLesson(t, ctx, db, instructor.ID, 10, false)
	seeded := testutil.SeedEnrollment(t, ctx, db, student.ID, l.ID, types.EnrollmentActive)

	tx := db.Begin()
	defer tx.Rollback()
	inner := dbctx.Context{Ctx: ctx, Tx: tx}

	got, err := repo.LockByUserAndLesson(inner, student.ID, l.ID)
	if err != nil {
		t.Fatalf("LockByUserAndLesson: %v", err)
	}
	if got == nil || got.ID != seeded.ID {
		t.Fatalf("locked row: want id=%d got=%v", seeded.ID, got)
	}
	missing, err := repo.LockByUserAndLesson(inner, student.ID, l.ID+100)
	if err != nil {
		t.Fatalf("LockByUserAndLesson missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing row: want nil got id=%d", missing.ID)
	}
}
