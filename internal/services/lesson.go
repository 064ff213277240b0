package services

import (
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

// LessonView is a lesson as returned to a viewer. IsEnrolled and Progress
// are only present for signed-in viewers.
type LessonView struct {
	*types.Lesson
	Instructor *types.UserSummary `json:"instructor,omitempty"`
	IsEnrolled *bool              `json:"is_enrolled,omitempty"`
	Progress   *int               `json:"progress,omitempty"`
}

func newLessonView(l *types.Lesson) *LessonView {
	v := &LessonView{Lesson: l}
	if l.Instructor != nil {
		v.Instructor = l.Instructor.Summary()
	}
	return v
}

func (v *LessonView) annotate(e *types.LessonEnrollment) {
	enrolled := e != nil
	progress := 0
	if e != nil {
		progress = e.Progress
	}
	v.IsEnrolled = &enrolled
	v.Progress = &progress
}

type CreateLessonInput struct {
	Title       string
	Description string
	Thumbnail   string
	Price       float64
	IsFree      bool
	Level       types.LessonLevel
	Duration    int
	AccessDays  int
	Tags        []string
}

type UpdateLessonInput struct {
	Title       *string
	Description *string
	Thumbnail   *string
	Price       *float64
	IsFree      *bool
	Level       *types.LessonLevel
	Duration    *int
	AccessDays  *int
	Tags        []string
}

type CreateModuleInput struct {
	Title       string
	Description string
	Order       int
}

type CreateContentInput struct {
	Title         string
	Type          types.ContentType
	Content       string
	Duration      int
	Order         int
	IsFreePreview bool
}

type LessonService interface {
	ListPublished(dbc dbctx.Context, viewerID uint) ([]*LessonView, error)
	GetLesson(dbc dbctx.Context, lessonID, viewerID uint) (*LessonView, error)
	GetContent(dbc dbctx.Context, userID, contentID uint) (*types.LessonContent, error)

	Create(dbc dbctx.Context, userID uint, in CreateLessonInput) (*types.Lesson, error)
	ListByInstructor(dbc dbctx.Context, userID uint) ([]*types.Lesson, error)
	Update(dbc dbctx.Context, lessonID, userID uint, in UpdateLessonInput) (*types.Lesson, error)
	Publish(dbc dbctx.Context, lessonID, userID uint) (*types.Lesson, error)
	Delete(dbc dbctx.Context, lessonID, userID uint) error

	CreateModule(dbc dbctx.Context, lessonID, userID uint, in CreateModuleInput) (*types.LessonModule, error)
	CreateContent(dbc dbctx.Context, moduleID, userID uint, in CreateContentInput) (*types.LessonContent, error)
}

type lessonService struct {
	db          *gorm.DB
	log         *logger.Logger
	access      AccessService
	users       userrepo.UserRepo
	lessons     learningrepo.LessonRepo
	modules     learningrepo.ModuleRepo
	contents    learningrepo.ContentRepo
	enrollments learningrepo.EnrollmentRepo
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	access AccessService,
	users userrepo.UserRepo,
	lessons learningrepo.LessonRepo,
	modules learningrepo.ModuleRepo,
	contents learningrepo.ContentRepo,
	enrollments learningrepo.EnrollmentRepo,
) LessonService {
	return &lessonService{
		db:          db,
		log:         baseLog.With("service", "LessonService"),
		access:      access,
		users:       users,
		lessons:     lessons,
		modules:     modules,
		contents:    contents,
		enrollments: enrollments,
	}
}

func (s *lessonService) ListPublished(dbc dbctx.Context, viewerID uint) ([]*LessonView, error) {
	rows, err := s.lessons.ListByStatus(dbc, types.LessonPublished)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	out := make([]*LessonView, 0, len(rows))
	for _, l := range rows {
		out = append(out, newLessonView(l))
	}
	if viewerID == 0 || len(rows) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.ID)
	}
	enrollments, err := s.enrollments.ListByUserAndLessons(dbc, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("list viewer enrollments: %w", err)
	}
	byLesson := make(map[uint]*types.LessonEnrollment, len(enrollments))
	for _, e := range enrollments {
		byLesson[e.LessonID] = e
	}
	for _, v := range out {
		v.annotate(byLesson[v.ID])
	}
	return out, nil
}

func (s *lessonService) GetLesson(dbc dbctx.Context, lessonID, viewerID uint) (*LessonView, error) {
	l, err := s.lessons.GetTree(dbc, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if l == nil {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}
	active, err := s.access.CheckAccess(dbc, viewerID, l.ID)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	GateLesson(l, FullAccess(viewerID, l, active))

	v := newLessonView(l)
	if viewerID != 0 {
		v.annotate(active)
	}
	return v, nil
}

func (s *lessonService) GetContent(dbc dbctx.Context, userID, contentID uint) (*types.LessonContent, error) {
	c, err := s.contents.GetByID(dbc, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if c == nil || c.Module == nil || c.Module.Lesson == nil {
		return nil, apierr.NotFound("content_not_found", "content not found")
	}
	if c.IsFreePreview || c.Module.Lesson.IsFree {
		return c, nil
	}
	active, err := s.access.CheckAccess(dbc, userID, c.Module.Lesson.ID)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	if active == nil {
		return nil, apierr.Forbidden("not_enrolled", "you must be enrolled to access this content")
	}
	return c, nil
}

func (s *lessonService) Create(dbc dbctx.Context, userID uint, in CreateLessonInput) (*types.Lesson, error) {
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	if err := ensure(Resource{Kind: ResourceLesson}, actorFor(u), ActionCreate, "publisher_required"); err != nil {
		return nil, err
	}
	level := in.Level
	if level == "" {
		level = "beginner"
	}
	l := &types.Lesson{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Thumbnail:    in.Thumbnail,
		Price:        in.Price,
		IsFree:       in.IsFree,
		Level:        level,
		Status:       types.LessonDraft,
		Duration:     in.Duration,
		AccessDays:   in.AccessDays,
		Tags:         datatypes.JSONSlice[string](nonNilStrings(in.Tags)),
		InstructorID: u.ID,
	}
	if err := s.lessons.Create(dbc, l); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	s.log.Info("lesson created", "lesson_id", l.ID, "instructor_user_id", u.ID)
	return l, nil
}

func (s *lessonService) ListByInstructor(dbc dbctx.Context, userID uint) ([]*types.Lesson, error) {
	rows, err := s.lessons.ListByInstructor(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return rows, nil
}

// owned loads a lesson and checks that userID may perform action on it.
func (s *lessonService) owned(dbc dbctx.Context, lessonID, userID uint, action Action) (*types.Lesson, error) {
	l, err := s.lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if l == nil {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}
	res := Resource{Kind: ResourceLesson, OwnerID: l.InstructorID}
	if err := ensure(res, Actor{UserID: userID}, action, "not_lesson_owner"); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *lessonService) Update(dbc dbctx.Context, lessonID, userID uint, in UpdateLessonInput) (*types.Lesson, error) {
	l, err := s.owned(dbc, lessonID, userID, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Thumbnail != nil {
		l.Thumbnail = *in.Thumbnail
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.IsFree != nil {
		l.IsFree = *in.IsFree
	}
	if in.Level != nil {
		l.Level = *in.Level
	}
	if in.Duration != nil {
		l.Duration = *in.Duration
	}
	if in.AccessDays != nil {
		l.AccessDays = *in.AccessDays
	}
	if in.Tags != nil {
		l.Tags = datatypes.JSONSlice[string](in.Tags)
	}
	if err := s.lessons.Update(dbc, l); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return l, nil
}

func (s *lessonService) Publish(dbc dbctx.Context, lessonID, userID uint) (*types.Lesson, error) {
	l, err := s.owned(dbc, lessonID, userID, ActionPublish)
	if err != nil {
		return nil, err
	}
	l.Status = types.LessonPublished
	if err := s.lessons.Update(dbc, l); err != nil {
		return nil, fmt.Errorf("publish lesson: %w", err)
	}
	s.log.Info("lesson published", "lesson_id", l.ID)
	return l, nil
}

func (s *lessonService) Delete(dbc dbctx.Context, lessonID, userID uint) error {
	if _, err := s.owned(dbc, lessonID, userID, ActionDelete); err != nil {
		return err
	}
	if err := s.lessons.DeleteCascade(dbc, lessonID); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

func (s *lessonService) CreateModule(dbc dbctx.Context, lessonID, userID uint, in CreateModuleInput) (*types.LessonModule, error) {
	if _, err := s.owned(dbc, lessonID, userID, ActionManage); err != nil {
		return nil, err
	}
	m := &types.LessonModule{
		LessonID:    lessonID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Order:       in.Order,
	}
	if err := s.modules.Create(dbc, m); err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}
	return m, nil
}

func (s *lessonService) CreateContent(dbc dbctx.Context, moduleID, userID uint, in CreateContentInput) (*types.LessonContent, error) {
	m, err := s.modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	if m == nil || m.Lesson == nil {
		return nil, apierr.NotFound("module_not_found", "module not found")
	}
	res := Resource{Kind: ResourceLesson, OwnerID: m.Lesson.InstructorID}
	if err := ensure(res, Actor{UserID: userID}, ActionManage, "not_lesson_owner"); err != nil {
		return nil, err
	}
	c := &types.LessonContent{
		ModuleID:      moduleID,
		Title:         strings.TrimSpace(in.Title),
		Type:          in.Type,
		Content:       in.Content,
		Duration:      in.Duration,
		Order:         in.Order,
		IsFreePreview: in.IsFreePreview,
	}
	if err := s.contents.Create(dbc, c); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return c, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
