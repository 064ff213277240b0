package services

import (
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	"github.com/edulearn/edulearn-backend/internal/data/repos/testutil"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/domain/learning"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
)

type lessonFixture struct {
	lesson   *types.Lesson
	contents []*types.LessonContent
}

// seedCourse creates a published lesson with modules x perModule contents.
// The first content of the first module is a free preview.
func seedCourse(t *testing.T, h *harness, price float64, isFree bool, modules, perModule int) lessonFixture {
	t.Helper()
	instructor := testutil.SeedPublisher(t, h.ctx, h.db, "instructor")
	l := testutil.SeedLesson(t, h.ctx, h.db, instructor.ID, price, isFree)
	out := lessonFixture{lesson: l}
	for m := 0; m < modules; m++ {
		mod := testutil.SeedModule(t, h.ctx, h.db, l.ID, m+1)
		for c := 0; c < perModule; c++ {
			preview := m == 0 && c == 0
			out.contents = append(out.contents, testutil.SeedContent(t, h.ctx, h.db, mod.ID, c+1, preview))
		}
	}
	return out
}

func TestEnrollFreeLessonCreatesNoPayment(t *testing.T) {
	for _, tc := range []struct {
		name   string
		price  float64
		isFree bool
	}{
		{name: "flagged free", price: 49, isFree: true},
		{name: "zero price", price: 0, isFree: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			fx := seedCourse(t, h, tc.price, tc.isFree, 1, 1)
			student := testutil.SeedUser(t, h.ctx, h.db, "student")

			e, err := h.enrollmentService().Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe)
			if err != nil {
				t.Fatalf("Enroll: %v", err)
			}
			if e.PricePaid != 0 {
				t.Fatalf("price_paid: want=0 got=%v", e.PricePaid)
			}
			if e.Status != types.EnrollmentActive {
				t.Fatalf("status: want=%s got=%s", types.EnrollmentActive, e.Status)
			}
			payments, err := h.payments.ListByUser(h.dbc, student.ID)
			if err != nil {
				t.Fatalf("ListByUser: %v", err)
			}
			if len(payments) != 0 {
				t.Fatalf("payments: want=0 got=%d", len(payments))
			}
			l, _ := h.lessons.GetByID(h.dbc, fx.lesson.ID)
			if l.EnrollmentCount != 1 {
				t.Fatalf("enrollment_count: want=1 got=%d", l.EnrollmentCount)
			}
			if len(h.notify.enrollments) != 1 {
				t.Fatalf("enrollment events: want=1 got=%d", len(h.notify.enrollments))
			}
		})
	}
}

func TestEnrollPaidLessonRecordsCompletedPayment(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 29.5, false, 1, 1)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")

	e, err := h.enrollmentService().Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentPaypal)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if e.PricePaid != 29.5 {
		t.Fatalf("price_paid: want=29.5 got=%v", e.PricePaid)
	}
	payments, err := h.payments.ListByUserAndLesson(h.dbc, student.ID, fx.lesson.ID)
	if err != nil {
		t.Fatalf("ListByUserAndLesson: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payments: want=1 got=%d", len(payments))
	}
	p := payments[0]
	if p.Status != types.PaymentCompleted || p.Amount != 29.5 || p.Method != learning.PaymentPaypal {
		t.Fatalf("payment: got status=%s amount=%v method=%s", p.Status, p.Amount, p.Method)
	}
	if !strings.HasPrefix(p.TransactionID, "TXN-") {
		t.Fatalf("transaction id: want TXN- prefix got=%q", p.TransactionID)
	}
	if p.Metadata["gateway"] != "stub" || p.Metadata["lesson_title"] != fx.lesson.Title {
		t.Fatalf("metadata: got=%v", p.Metadata)
	}
	if _, ok := p.Metadata["completed_at"]; !ok {
		t.Fatalf("metadata: want completed_at got=%v", p.Metadata)
	}
	if e.ExpiresAt != nil {
		t.Fatalf("expires_at: want nil for lifetime access got=%v", e.ExpiresAt)
	}
}

func TestEnrollSetsExpiryFromAccessDays(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 1)
	if err := h.lessons.UpdateFields(h.dbc, fx.lesson.ID, map[string]interface{}{"access_days": 30}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	student := testutil.SeedUser(t, h.ctx, h.db, "student")

	e, err := h.enrollmentService().Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if e.ExpiresAt == nil {
		t.Fatalf("expires_at: want set got nil")
	}
	if got := e.ExpiresAt.Sub(e.EnrolledAt); got != 30*24*time.Hour {
		t.Fatalf("access window: want=%v got=%v", 30*24*time.Hour, got)
	}

	// the expiry sweep only picks it up once the window has passed
	n, err := h.enrollmentService().ExpireDue(h.dbc, e.EnrolledAt.Add(29*24*time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("ExpireDue before window: n=%d err=%v", n, err)
	}
	n, err = h.enrollmentService().ExpireDue(h.dbc, e.ExpiresAt.Add(time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("ExpireDue after window: n=%d err=%v", n, err)
	}
}

func TestEnrollTwiceIsRejected(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 1)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	svc := h.enrollmentService()

	if _, err := svc.Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	_, err := svc.Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe)
	wantStatus(t, err, http.StatusBadRequest)

	mine, err := svc.ListMine(h.dbc, student.ID)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("enrollments: want=1 got=%d", len(mine))
	}
	payments, _ := h.payments.ListByUser(h.dbc, student.ID)
	if len(payments) != 1 {
		t.Fatalf("payments: want=1 got=%d", len(payments))
	}
}

// blindEnrollments misses every existence check, as a concurrent request
// racing past the lookup would.
type blindEnrollments struct {
	learningrepo.EnrollmentRepo
}

func (blindEnrollments) GetByUserAndLesson(dbctx.Context, uint, uint) (*types.LessonEnrollment, error) {
	return nil, nil
}

func TestEnrollDuplicateInsertRollsBackPayment(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 1)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	svc := NewEnrollmentService(h.db, h.log, h.lessons, blindEnrollments{h.enrollments}, h.payments, StubGateway{}, h.notify)

	if _, err := svc.Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	_, err := svc.Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe)
	wantStatus(t, err, http.StatusBadRequest)

	payments, err := h.payments.ListByUser(h.dbc, student.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payments: want=1 got=%d", len(payments))
	}
	l, _ := h.lessons.GetByID(h.dbc, fx.lesson.ID)
	if l.EnrollmentCount != 1 {
		t.Fatalf("enrollment_count: want=1 got=%d", l.EnrollmentCount)
	}
	if len(h.notify.enrollments) != 1 {
		t.Fatalf("enrollment events: want=1 got=%d", len(h.notify.enrollments))
	}
}

func TestEnrollPaidLessonNeedsPaymentMethod(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 1)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	_, err := h.enrollmentService().Enroll(h.dbc, student.ID, fx.lesson.ID, "")
	wantStatus(t, err, http.StatusBadRequest)

	payments, _ := h.payments.ListByUser(h.dbc, student.ID)
	if len(payments) != 0 {
		t.Fatalf("payments: want=0 got=%d", len(payments))
	}
}

func TestEnrollUnknownLesson(t *testing.T) {
	h := newHarness(t)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	_, err := h.enrollmentService().Enroll(h.dbc, student.ID, 999, learning.PaymentStripe)
	wantStatus(t, err, http.StatusNotFound)
}

func TestProgressAccumulatesAndKeepsFirstCompletion(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 2)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	testutil.SeedEnrollment(t, h.ctx, h.db, student.ID, fx.lesson.ID, types.EnrollmentActive)
	svc := h.progressService()
	content := fx.contents[0]

	first, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: content.ID, IsCompleted: true, TimeSpent: 30})
	if err != nil {
		t.Fatalf("first UpdateProgress: %v", err)
	}
	if first.CompletedAt == nil {
		t.Fatalf("completed_at: want set got nil")
	}
	second, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: content.ID, IsCompleted: true, TimeSpent: 45})
	if err != nil {
		t.Fatalf("second UpdateProgress: %v", err)
	}
	if second.TimeSpent != 75 {
		t.Fatalf("time_spent: want=75 got=%d", second.TimeSpent)
	}
	if second.CompletedAt == nil || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completed_at: want=%v got=%v", first.CompletedAt, second.CompletedAt)
	}
}

func TestProgressPercentRounds(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 3)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	testutil.SeedEnrollment(t, h.ctx, h.db, student.ID, fx.lesson.ID, types.EnrollmentActive)
	svc := h.progressService()

	for _, c := range fx.contents[:2] {
		if _, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: c.ID, IsCompleted: true}); err != nil {
			t.Fatalf("UpdateProgress: %v", err)
		}
	}
	e, _ := h.enrollments.GetByUserAndLesson(h.dbc, student.ID, fx.lesson.ID)
	if e.Progress != 67 {
		t.Fatalf("progress: want=67 got=%d", e.Progress)
	}
	if e.Status != types.EnrollmentActive || e.CompletedAt != nil {
		t.Fatalf("enrollment should still be active, got status=%s completed_at=%v", e.Status, e.CompletedAt)
	}
}

func TestEnrollThenCompleteEverything(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 2, 2)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")

	if _, err := h.enrollmentService().Enroll(h.dbc, student.ID, fx.lesson.ID, learning.PaymentStripe); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	progressOf := func() *types.LessonEnrollment {
		t.Helper()
		e, err := h.enrollments.GetByUserAndLesson(h.dbc, student.ID, fx.lesson.ID)
		if err != nil || e == nil {
			t.Fatalf("load enrollment: %v", err)
		}
		return e
	}
	if got := progressOf().Progress; got != 0 {
		t.Fatalf("initial progress: want=0 got=%d", got)
	}

	svc := h.progressService()
	complete := func(c *types.LessonContent) {
		t.Helper()
		if _, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: c.ID, IsCompleted: true, TimeSpent: 10}); err != nil {
			t.Fatalf("UpdateProgress(%d): %v", c.ID, err)
		}
	}

	complete(fx.contents[0])
	complete(fx.contents[1])
	if got := progressOf().Progress; got != 50 {
		t.Fatalf("progress after half: want=50 got=%d", got)
	}

	complete(fx.contents[2])
	complete(fx.contents[3])
	e := progressOf()
	if e.Progress != 100 {
		t.Fatalf("progress after all: want=100 got=%d", e.Progress)
	}
	if e.Status != types.EnrollmentCompleted || e.CompletedAt == nil {
		t.Fatalf("want completed enrollment, got status=%s completed_at=%v", e.Status, e.CompletedAt)
	}
	if len(h.notify.completions) != 1 {
		t.Fatalf("completion events: want=1 got=%d", len(h.notify.completions))
	}
}

func TestConcurrentProgressCompletesOnce(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 2, 2)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	testutil.SeedEnrollment(t, h.ctx, h.db, student.ID, fx.lesson.ID, types.EnrollmentActive)
	svc := h.progressService()

	var wg sync.WaitGroup
	errs := make(chan error, len(fx.contents))
	for _, c := range fx.contents {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: id, IsCompleted: true, TimeSpent: 3})
			errs <- err
		}(c.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("UpdateProgress: %v", err)
		}
	}

	e, err := h.enrollments.GetByUserAndLesson(h.dbc, student.ID, fx.lesson.ID)
	if err != nil || e == nil {
		t.Fatalf("load enrollment: %v", err)
	}
	if e.Progress != 100 || e.Status != types.EnrollmentCompleted {
		t.Fatalf("enrollment: want progress=100 status=%s got progress=%d status=%s", types.EnrollmentCompleted, e.Progress, e.Status)
	}
	if len(h.notify.completions) != 1 {
		t.Fatalf("completion events: want=1 got=%d", len(h.notify.completions))
	}
}

func TestProgressRequiresEnrollmentUnlessFree(t *testing.T) {
	h := newHarness(t)
	paid := seedCourse(t, h, 10, false, 1, 1)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	svc := h.progressService()

	_, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: paid.contents[0].ID, IsCompleted: true})
	wantStatus(t, err, http.StatusForbidden)

	_, err = svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: 12345})
	wantStatus(t, err, http.StatusNotFound)

	_, err = svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: paid.contents[0].ID, TimeSpent: -1})
	wantStatus(t, err, http.StatusBadRequest)

	// Free lessons accept progress without an enrollment.
	l := testutil.SeedLesson(t, h.ctx, h.db, paid.lesson.InstructorID, 0, true)
	mod := testutil.SeedModule(t, h.ctx, h.db, l.ID, 1)
	c := testutil.SeedContent(t, h.ctx, h.db, mod.ID, 1, false)
	row, err := svc.UpdateProgress(h.dbc, student.ID, UpdateProgressInput{ContentID: c.ID, IsCompleted: true, TimeSpent: 5})
	if err != nil {
		t.Fatalf("free UpdateProgress: %v", err)
	}
	if !row.IsCompleted || row.TimeSpent != 5 {
		t.Fatalf("progress row: got completed=%v time=%d", row.IsCompleted, row.TimeSpent)
	}
}

func TestExpiredEnrollmentLosesAccess(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 1)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	e := testutil.SeedEnrollment(t, h.ctx, h.db, student.ID, fx.lesson.ID, types.EnrollmentActive)
	past := time.Now().Add(-time.Hour)
	e.ExpiresAt = &past
	if err := h.enrollments.Update(h.dbc, e); err != nil {
		t.Fatalf("Update: %v", err)
	}

	n, err := h.enrollmentService().ExpireDue(h.dbc, time.Now())
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired: want=1 got=%d", n)
	}
	active, err := h.access.CheckAccess(h.dbc, student.ID, fx.lesson.ID)
	if err != nil {
		t.Fatalf("CheckAccess: %v", err)
	}
	if active != nil {
		t.Fatalf("CheckAccess: want nil after expiry got status=%s", active.Status)
	}
}

func TestGetLessonGatesContent(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 2)
	enrolled := testutil.SeedUser(t, h.ctx, h.db, "enrolled")
	outsider := testutil.SeedUser(t, h.ctx, h.db, "outsider")
	testutil.SeedEnrollment(t, h.ctx, h.db, enrolled.ID, fx.lesson.ID, types.EnrollmentActive)
	svc := h.lessonService()

	for _, tc := range []struct {
		name         string
		viewer       uint
		wantContents int
		wantEnrolled *bool
	}{
		{name: "anonymous", viewer: 0, wantContents: 1},
		{name: "not enrolled", viewer: outsider.ID, wantContents: 1, wantEnrolled: ptrBool(false)},
		{name: "enrolled", viewer: enrolled.ID, wantContents: 2, wantEnrolled: ptrBool(true)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := svc.GetLesson(h.dbc, fx.lesson.ID, tc.viewer)
			if err != nil {
				t.Fatalf("GetLesson: %v", err)
			}
			if len(v.Modules) != 1 {
				t.Fatalf("modules: want=1 got=%d", len(v.Modules))
			}
			if got := len(v.Modules[0].Contents); got != tc.wantContents {
				t.Fatalf("contents: want=%d got=%d", tc.wantContents, got)
			}
			if tc.wantEnrolled == nil {
				if v.IsEnrolled != nil {
					t.Fatalf("is_enrolled: want absent got=%v", *v.IsEnrolled)
				}
				return
			}
			if v.IsEnrolled == nil || *v.IsEnrolled != *tc.wantEnrolled {
				t.Fatalf("is_enrolled: want=%v got=%v", *tc.wantEnrolled, v.IsEnrolled)
			}
		})
	}
}

func TestGetContentRequiresEnrollment(t *testing.T) {
	h := newHarness(t)
	fx := seedCourse(t, h, 10, false, 1, 2)
	student := testutil.SeedUser(t, h.ctx, h.db, "student")
	svc := h.lessonService()

	if _, err := svc.GetContent(h.dbc, student.ID, fx.contents[0].ID); err != nil {
		t.Fatalf("preview GetContent: %v", err)
	}
	_, err := svc.GetContent(h.dbc, student.ID, fx.contents[1].ID)
	wantStatus(t, err, http.StatusForbidden)

	testutil.SeedEnrollment(t, h.ctx, h.db, student.ID, fx.lesson.ID, types.EnrollmentActive)
	if _, err := svc.GetContent(h.dbc, student.ID, fx.contents[1].ID); err != nil {
		t.Fatalf("enrolled GetContent: %v", err)
	}
}

func TestCreateLessonRequiresPublisher(t *testing.T) {
	h := newHarness(t)
	plain := testutil.SeedUser(t, h.ctx, h.db, "plain")
	publisher := testutil.SeedPublisher(t, h.ctx, h.db, "publisher")
	svc := h.lessonService()
	in := CreateLessonInput{Title: "Go basics", Description: "learn go", Price: 15}

	_, err := svc.Create(h.dbc, plain.ID, in)
	wantStatus(t, err, http.StatusForbidden)

	l, err := svc.Create(h.dbc, publisher.ID, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.Status != types.LessonDraft {
		t.Fatalf("status: want=%s got=%s", types.LessonDraft, l.Status)
	}

	other := testutil.SeedPublisher(t, h.ctx, h.db, "other")
	_, err = svc.Publish(h.dbc, l.ID, other.ID)
	wantStatus(t, err, http.StatusForbidden)
	if _, err := svc.Publish(h.dbc, l.ID, publisher.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestCompletionPercent(t *testing.T) {
	for _, tc := range []struct {
		done, total int64
		want        int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{4, 4, 100},
	} {
		if got := CompletionPercent(tc.done, tc.total); got != tc.want {
			t.Fatalf("CompletionPercent(%d,%d): want=%d got=%d", tc.done, tc.total, tc.want, got)
		}
	}
}

func ptrBool(v bool) *bool { return &v }
