package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type EnrollmentService interface {
	Enroll(dbc dbctx.Context, userID, lessonID uint, method types.PaymentMethod) (*types.LessonEnrollment, error)
	ListMine(dbc dbctx.Context, userID uint) ([]*types.LessonEnrollment, error)
	// ExpireDue marks active enrollments past their expires_at as expired.
	ExpireDue(dbc dbctx.Context, now time.Time) (int64, error)
}

type enrollmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	lessons     learningrepo.LessonRepo
	enrollments learningrepo.EnrollmentRepo
	payments    learningrepo.PaymentRepo
	gateway     PaymentGateway
	notify      Notifier
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessons learningrepo.LessonRepo,
	enrollments learningrepo.EnrollmentRepo,
	payments learningrepo.PaymentRepo,
	gateway PaymentGateway,
	notify Notifier,
) EnrollmentService {
	if gateway == nil {
		gateway = StubGateway{}
	}
	return &enrollmentService{
		db:          db,
		log:         baseLog.With("service", "EnrollmentService"),
		lessons:     lessons,
		enrollments: enrollments,
		payments:    payments,
		gateway:     gateway,
		notify:      notify,
	}
}

var errAlreadyEnrolled = apierr.BadRequest("already_enrolled", "already enrolled in this lesson")

func (s *enrollmentService) Enroll(dbc dbctx.Context, userID, lessonID uint, method types.PaymentMethod) (*types.LessonEnrollment, error) {
	var (
		lesson     *types.Lesson
		enrollment *types.LessonEnrollment
		payment    *types.Payment
	)
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		l, err := s.lessons.GetByID(inner, lessonID)
		if err != nil {
			return fmt.Errorf("load lesson: %w", err)
		}
		if l == nil {
			return apierr.NotFound("lesson_not_found", "lesson not found")
		}
		lesson = l

		existing, err := s.enrollments.GetByUserAndLesson(inner, userID, lessonID)
		if err != nil {
			return fmt.Errorf("check enrollment: %w", err)
		}
		if existing != nil {
			return errAlreadyEnrolled
		}

		now := time.Now().UTC()
		price := l.EffectivePrice()
		if price > 0 {
			if method == "" {
				return apierr.BadRequest("payment_method_required", "payment method is required for paid lessons")
			}
			payment = &types.Payment{
				UserID:   userID,
				LessonID: lessonID,
				Amount:   price,
				Method:   method,
				Status:   types.PaymentPending,
				Metadata: datatypes.JSONMap{
					"lesson_title": l.Title,
					"list_price":   l.Price,
				},
			}
			if err := s.payments.Create(inner, payment); err != nil {
				return fmt.Errorf("create payment: %w", err)
			}
			if err := s.gateway.Complete(inner, payment); err != nil {
				return fmt.Errorf("payment gateway: %w", err)
			}
			if err := s.payments.Update(inner, payment); err != nil {
				return fmt.Errorf("update payment: %w", err)
			}
		}

		enrollment = &types.LessonEnrollment{
			UserID:     userID,
			LessonID:   lessonID,
			Status:     types.EnrollmentActive,
			PricePaid:  price,
			EnrolledAt: now,
			ExpiresAt:  l.AccessUntil(now),
		}
		if err := s.enrollments.Create(inner, enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyEnrolled
			}
			return fmt.Errorf("create enrollment: %w", err)
		}
		if err := s.lessons.IncrementEnrollmentCount(inner, lessonID, 1); err != nil {
			return fmt.Errorf("increment enrollment count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("enrollment created",
		"user_id", userID,
		"lesson_id", lessonID,
		"price_paid", enrollment.PricePaid,
		"paid", payment != nil,
	)
	if s.notify != nil {
		s.notify.EnrollmentCreated(dbc.Ctx, lesson, enrollment, payment)
	}
	return enrollment, nil
}

func (s *enrollmentService) ListMine(dbc dbctx.Context, userID uint) ([]*types.LessonEnrollment, error) {
	rows, err := s.enrollments.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return rows, nil
}

func (s *enrollmentService) ExpireDue(dbc dbctx.Context, now time.Time) (int64, error) {
	n, err := s.enrollments.ExpireDue(dbc, now)
	if err != nil {
		return 0, fmt.Errorf("expire enrollments: %w", err)
	}
	if n > 0 {
		s.log.Info("enrollments expired", "count", n)
	}
	return n, nil
}
