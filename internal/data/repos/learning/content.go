package learning

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type ContentRepo interface {
	Create(dbc dbctx.Context, row *types.LessonContent) error
	// GetByID returns the content with Module and Module.Lesson loaded.
	GetByID(dbc dbctx.Context, id uint) (*types.LessonContent, error)
	IDsByLesson(dbc dbctx.Context, lessonID uint) ([]uint, error)
	CountByLesson(dbc dbctx.Context, lessonID uint) (int64, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) Create(dbc dbctx.Context, row *types.LessonContent) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Module").Create(row).Error
}

func (r *contentRepo) GetByID(dbc dbctx.Context, id uint) (*types.LessonContent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out types.LessonContent
	err := t.WithContext(dbc.Ctx).
		Preload("Module").
		Preload("Module.Lesson").
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentRepo) lessonScope(dbc dbctx.Context, lessonID uint) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.LessonContent{}).
		Joins("JOIN lesson_modules ON lesson_modules.id = lesson_contents.module_id").
		Where("lesson_modules.lesson_id = ?", lessonID)
}

func (r *contentRepo) IDsByLesson(dbc dbctx.Context, lessonID uint) ([]uint, error) {
	var ids []uint
	if err := r.lessonScope(dbc, lessonID).Pluck("lesson_contents.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *contentRepo) CountByLesson(dbc dbctx.Context, lessonID uint) (int64, error) {
	var n int64
	if err := r.lessonScope(dbc, lessonID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
