package learning

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, row *types.LessonEnrollment) error
	GetByUserAndLesson(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error)
	// GetActive returns the enrollment only when its status is active.
	GetActive(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error)
	// LockByUserAndLesson reads the enrollment with a row lock. Must run inside a transaction.
	LockByUserAndLesson(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error)

	ListByUser(dbc dbctx.Context, userID uint) ([]*types.LessonEnrollment, error)
	ListByUserAndLessons(dbc dbctx.Context, userID uint, lessonIDs []uint) ([]*types.LessonEnrollment, error)

	Update(dbc dbctx.Context, row *types.LessonEnrollment) error
	// ExpireDue flips active enrollments whose expires_at has passed to expired.
	ExpireDue(dbc dbctx.Context, now time.Time) (int64, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, row *types.LessonEnrollment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Lesson").Create(row).Error
}

func (r *enrollmentRepo) first(q *gorm.DB) (*types.LessonEnrollment, error) {
	var out types.LessonEnrollment
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *enrollmentRepo) GetByUserAndLesson(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.first(t.WithContext(dbc.Ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID))
}

func (r *enrollmentRepo) GetActive(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == 0 || lessonID == 0 {
		return nil, nil
	}
	return r.first(t.WithContext(dbc.Ctx).Where(
		"user_id = ? AND lesson_id = ? AND status = ?",
		userID, lessonID, types.EnrollmentActive,
	))
}

func (r *enrollmentRepo) LockByUserAndLesson(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.first(t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID))
}

func (r *enrollmentRepo) ListByUser(dbc dbctx.Context, userID uint) ([]*types.LessonEnrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.LessonEnrollment
	if err := t.WithContext(dbc.Ctx).
		Preload("Lesson").
		Preload("Lesson.Instructor").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) ListByUserAndLessons(dbc dbctx.Context, userID uint, lessonIDs []uint) ([]*types.LessonEnrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.LessonEnrollment
	if userID == 0 || len(lessonIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) Update(dbc dbctx.Context, row *types.LessonEnrollment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Lesson").Save(row).Error
}

func (r *enrollmentRepo) ExpireDue(dbc dbctx.Context, now time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.LessonEnrollment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", types.EnrollmentActive, now).
		Updates(map[string]interface{}{
			"status":     types.EnrollmentExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}
