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

type ProgressRepo interface {
	GetByUserAndContent(dbc dbctx.Context, userID, contentID uint) (*types.LessonProgress, error)
	// Accumulate upserts the (user, content) row in one statement: time spent is
	// added to the stored total, is_completed is overwritten and completed_at
	// keeps its first non-null value.
	Accumulate(dbc dbctx.Context, userID, contentID uint, isCompleted bool, timeSpent int, now time.Time) (*types.LessonProgress, error)
	CountCompletedInLesson(dbc dbctx.Context, userID, lessonID uint) (int64, error)
	ListByUserAndContentIDs(dbc dbctx.Context, userID uint, contentIDs []uint) ([]*types.LessonProgress, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) GetByUserAndContent(dbc dbctx.Context, userID, contentID uint) (*types.LessonProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.LessonProgress
	err := t.WithContext(dbc.Ctx).Where("user_id = ? AND content_id = ?", userID, contentID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *progressRepo) Accumulate(dbc dbctx.Context, userID, contentID uint, isCompleted bool, timeSpent int, now time.Time) (*types.LessonProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row := &types.LessonProgress{
		UserID:      userID,
		ContentID:   contentID,
		IsCompleted: isCompleted,
		TimeSpent:   timeSpent,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if isCompleted {
		row.CompletedAt = &now
	}
	err := t.WithContext(dbc.Ctx).
		Omit("Content").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "is_completed"}, Value: gorm.Expr("excluded.is_completed")},
				{Column: clause.Column{Name: "time_spent"}, Value: gorm.Expr("lesson_progress.time_spent + excluded.time_spent")},
				{Column: clause.Column{Name: "completed_at"}, Value: gorm.Expr("COALESCE(lesson_progress.completed_at, excluded.completed_at)")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndContent(dbc, userID, contentID)
}

func (r *progressRepo) CountCompletedInLesson(dbc dbctx.Context, userID, lessonID uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.LessonProgress{}).
		Joins("JOIN lesson_contents ON lesson_contents.id = lesson_progress.content_id").
		Joins("JOIN lesson_modules ON lesson_modules.id = lesson_contents.module_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.is_completed = ? AND lesson_modules.lesson_id = ?", userID, true, lessonID).
		Count(&n).Error
	return n, err
}

func (r *progressRepo) ListByUserAndContentIDs(dbc dbctx.Context, userID uint, contentIDs []uint) ([]*types.LessonProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.LessonProgress{}
	if len(contentIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Content").
		Where("user_id = ? AND content_id IN ?", userID, contentIDs).
		Order("content_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
