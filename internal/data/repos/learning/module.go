package learning

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Create(dbc dbctx.Context, row *types.LessonModule) error
	// GetByID returns the module with its owning lesson loaded.
	GetByID(dbc dbctx.Context, id uint) (*types.LessonModule, error)
	ListByLesson(dbc dbctx.Context, lessonID uint) ([]*types.LessonModule, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, row *types.LessonModule) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Omit("Lesson", "Contents").Create(row).Error
}

func (r *moduleRepo) GetByID(dbc dbctx.Context, id uint) (*types.LessonModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out types.LessonModule
	err := t.WithContext(dbc.Ctx).Preload("Lesson").Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *moduleRepo) ListByLesson(dbc dbctx.Context, lessonID uint) ([]*types.LessonModule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.LessonModule
	if err := t.WithContext(dbc.Ctx).
		Where("lesson_id = ?", lessonID).
		Order(`"order" ASC, id ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
