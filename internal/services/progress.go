package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type UpdateProgressInput struct {
	ContentID   uint
	IsCompleted bool
	TimeSpent   int
}

type ProgressService interface {
	UpdateProgress(dbc dbctx.Context, userID uint, in UpdateProgressInput) (*types.LessonProgress, error)
	GetLessonProgress(dbc dbctx.Context, userID, lessonID uint) ([]*types.LessonProgress, error)
}

type progressService struct {
	db          *gorm.DB
	log         *logger.Logger
	access      AccessService
	lessons     learningrepo.LessonRepo
	contents    learningrepo.ContentRepo
	enrollments learningrepo.EnrollmentRepo
	progress    learningrepo.ProgressRepo
	notify      Notifier
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	access AccessService,
	lessons learningrepo.LessonRepo,
	contents learningrepo.ContentRepo,
	enrollments learningrepo.EnrollmentRepo,
	progress learningrepo.ProgressRepo,
	notify Notifier,
) ProgressService {
	return &progressService{
		db:          db,
		log:         baseLog.With("service", "ProgressService"),
		access:      access,
		lessons:     lessons,
		contents:    contents,
		enrollments: enrollments,
		progress:    progress,
		notify:      notify,
	}
}

// CompletionPercent is round(completed/total*100), 0 when there is no content.
func CompletionPercent(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (s *progressService) UpdateProgress(dbc dbctx.Context, userID uint, in UpdateProgressInput) (*types.LessonProgress, error) {
	if in.TimeSpent < 0 {
		return nil, apierr.BadRequest("invalid_time_spent", "time_spent must be >= 0")
	}
	var (
		row       *types.LessonProgress
		completed *types.LessonEnrollment
	)
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		content, err := s.contents.GetByID(inner, in.ContentID)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}
		if content == nil || content.Module == nil || content.Module.Lesson == nil {
			return apierr.NotFound("content_not_found", "content not found")
		}
		lesson := content.Module.Lesson

		enrollment, err := s.access.CheckAccess(inner, userID, lesson.ID)
		if err != nil {
			return fmt.Errorf("check access: %w", err)
		}
		if enrollment == nil && !lesson.IsFree {
			return apierr.Forbidden("not_enrolled", "you must be enrolled in this lesson")
		}
		if enrollment != nil {
			// Serializes concurrent recomputes for the same (user, lesson).
			enrollment, err = s.enrollments.LockByUserAndLesson(inner, userID, lesson.ID)
			if err != nil {
				return fmt.Errorf("lock enrollment: %w", err)
			}
		}

		now := time.Now().UTC()
		row, err = s.progress.Accumulate(inner, userID, content.ID, in.IsCompleted, in.TimeSpent, now)
		if err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		if enrollment == nil {
			return nil
		}
		done, err := s.recompute(inner, enrollment, lesson.ID, now)
		if err != nil {
			return err
		}
		if done {
			completed = enrollment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if completed != nil {
		s.log.Info("lesson completed", "user_id", userID, "lesson_id", completed.LessonID)
		if s.notify != nil {
			s.notify.LessonCompleted(dbc.Ctx, completed)
		}
	}
	return row, nil
}

// recompute writes the completion percentage to the enrollment and reports
// whether this update completed the lesson.
func (s *progressService) recompute(dbc dbctx.Context, e *types.LessonEnrollment, lessonID uint, now time.Time) (bool, error) {
	total, err := s.contents.CountByLesson(dbc, lessonID)
	if err != nil {
		return false, fmt.Errorf("count contents: %w", err)
	}
	done, err := s.progress.CountCompletedInLesson(dbc, e.UserID, lessonID)
	if err != nil {
		return false, fmt.Errorf("count completed: %w", err)
	}
	e.Progress = CompletionPercent(done, total)
	justCompleted := false
	if e.Progress == 100 && e.CompletedAt == nil {
		e.CompletedAt = &now
		e.Status = types.EnrollmentCompleted
		justCompleted = true
	}
	if err := s.enrollments.Update(dbc, e); err != nil {
		return false, fmt.Errorf("update enrollment: %w", err)
	}
	return justCompleted, nil
}

func (s *progressService) GetLessonProgress(dbc dbctx.Context, userID, lessonID uint) ([]*types.LessonProgress, error) {
	lesson, err := s.lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if lesson == nil {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}
	ids, err := s.contents.IDsByLesson(dbc, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list content ids: %w", err)
	}
	rows, err := s.progress.ListByUserAndContentIDs(dbc, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}
