package services

import (
	"gorm.io/gorm"

	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

// AccessService decides whether a user may see gated lesson content.
type AccessService interface {
	// CheckAccess returns the user's enrollment when it is active, nil otherwise.
	CheckAccess(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error)
}

type accessService struct {
	db          *gorm.DB
	log         *logger.Logger
	enrollments learningrepo.EnrollmentRepo
}

func NewAccessService(db *gorm.DB, baseLog *logger.Logger, enrollments learningrepo.EnrollmentRepo) AccessService {
	return &accessService{
		db:          db,
		log:         baseLog.With("service", "AccessService"),
		enrollments: enrollments,
	}
}

func (s *accessService) CheckAccess(dbc dbctx.Context, userID, lessonID uint) (*types.LessonEnrollment, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.enrollments.GetActive(dbc, userID, lessonID)
}
