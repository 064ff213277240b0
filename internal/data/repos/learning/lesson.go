package learning

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, row *types.Lesson) error
	GetByID(dbc dbctx.Context, id uint) (*types.Lesson, error)
	// GetTree loads the lesson with its instructor, modules and contents.
	GetTree(dbc dbctx.Context, id uint) (*types.Lesson, error)

	ListByStatus(dbc dbctx.Context, status types.LessonStatus) ([]*types.Lesson, error)
	ListByInstructor(dbc dbctx.Context, instructorID uint) ([]*types.Lesson, error)
	Page(dbc dbctx.Context, offset, limit int) ([]*types.Lesson, int64, error)
	Count(dbc dbctx.Context) (int64, error)

	Update(dbc dbctx.Context, row *types.Lesson) error
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	IncrementEnrollmentCount(dbc dbctx.Context, id uint, delta int) error

	// DeleteCascade removes the lesson with its modules, contents, enrollments
	// and progress rows. Payments are kept as ledger history.
	DeleteCascade(dbc dbctx.Context, id uint) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(dbc dbctx.Context, row *types.Lesson) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uint) (*types.Lesson, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Lesson
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *lessonRepo) GetTree(dbc dbctx.Context, id uint) (*types.Lesson, error) {
	if id == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Lesson
	err := t.WithContext(dbc.Ctx).
		Preload("Instructor").
		Preload("Modules").
		Preload("Modules.Contents").
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out.SortTree()
	return &out, nil
}

func (r *lessonRepo) ListByStatus(dbc dbctx.Context, status types.LessonStatus) ([]*types.Lesson, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Lesson
	if err := t.WithContext(dbc.Ctx).
		Preload("Instructor").
		Preload("Modules").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) ListByInstructor(dbc dbctx.Context, instructorID uint) ([]*types.Lesson, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Lesson
	if err := t.WithContext(dbc.Ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) Page(dbc dbctx.Context, offset, limit int) ([]*types.Lesson, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var total int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Lesson{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Lesson
	if err := t.WithContext(dbc.Ctx).
		Preload("Instructor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *lessonRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.Lesson{}).Count(&n).Error
	return n, err
}

func (r *lessonRepo) Update(dbc dbctx.Context, row *types.Lesson) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Instructor", "Modules").Save(row).Error
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Model(&types.Lesson{}).Where("id = ?", id).Updates(updates).Error
}

func (r *lessonRepo) IncrementEnrollmentCount(dbc dbctx.Context, id uint, delta int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Lesson{}).
		Where("id = ?", id).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", delta)).Error
}

func (r *lessonRepo) DeleteCascade(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		moduleIDs := txx.Model(&types.LessonModule{}).Select("id").Where("lesson_id = ?", id)
		contentIDs := txx.Model(&types.LessonContent{}).Select("id").Where("module_id IN (?)", moduleIDs)
		if err := txx.Where("content_id IN (?)", contentIDs).Delete(&types.LessonProgress{}).Error; err != nil {
			return err
		}
		if err := txx.Where("module_id IN (?)", moduleIDs).Delete(&types.LessonContent{}).Error; err != nil {
			return err
		}
		if err := txx.Where("lesson_id = ?", id).Delete(&types.LessonModule{}).Error; err != nil {
			return err
		}
		if err := txx.Where("lesson_id = ?", id).Delete(&types.LessonEnrollment{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&types.Lesson{}).Error
	})
}
