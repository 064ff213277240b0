package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	blogrepo "github.com/edulearn/edulearn-backend/internal/data/repos/blog"
	careersrepo "github.com/edulearn/edulearn-backend/internal/data/repos/careers"
	learningrepo "github.com/edulearn/edulearn-backend/internal/data/repos/learning"
	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type Dashboard struct {
	Users struct {
		Total      int64         `json:"total"`
		Admins     int64         `json:"admins"`
		Publishers int64         `json:"publishers"`
		Recent     []*types.User `json:"recent"`
	} `json:"users"`
	Content struct {
		Lessons   int64 `json:"lessons"`
		BlogPosts int64 `json:"blog_posts"`
	} `json:"content"`
	Jobs struct {
		Total  int64               `json:"total"`
		Open   int64               `json:"open"`
		Recent []*types.JobPosting `json:"recent"`
	} `json:"jobs"`
	Applications struct {
		Total   int64                   `json:"total"`
		Pending int64                   `json:"pending"`
		Recent  []*types.JobApplication `json:"recent"`
	} `json:"applications"`
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func newPage[T any](items []T, total int64, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Pages: pageCount(total, limit)}
}

type AdminService interface {
	Dashboard(dbc dbctx.Context) (*Dashboard, error)

	ListUsers(dbc dbctx.Context, page, limit int) (*Page[*types.User], error)
	GetUser(dbc dbctx.Context, id uint) (*types.User, error)
	SetAdmin(dbc dbctx.Context, adminID, userID uint, isAdmin bool) (*types.User, error)
	SetPublisher(dbc dbctx.Context, userID uint, isPublisher bool) (*types.User, error)
	DeleteUser(dbc dbctx.Context, userID uint) error

	ListApplications(dbc dbctx.Context, status types.ApplicationStatus, page, limit int) (*Page[*types.JobApplication], error)
	ApproveApplication(dbc dbctx.Context, adminID, applicationID uint, in ApplicationStatusInput) (*types.JobApplication, error)

	ListLessons(dbc dbctx.Context, page, limit int) (*Page[*types.Lesson], error)
	DeleteLesson(dbc dbctx.Context, lessonID uint) error
	ListBlogPosts(dbc dbctx.Context, page, limit int) (*Page[*types.BlogPost], error)
	DeleteBlogPost(dbc dbctx.Context, postID uint) error
}

type adminService struct {
	db           *gorm.DB
	log          *logger.Logger
	users        userrepo.UserRepo
	lessons      learningrepo.LessonRepo
	posts        blogrepo.PostRepo
	jobs         careersrepo.JobRepo
	applications careersrepo.ApplicationRepo
	notify       Notifier
}

func NewAdminService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users userrepo.UserRepo,
	lessons learningrepo.LessonRepo,
	posts blogrepo.PostRepo,
	jobs careersrepo.JobRepo,
	applications careersrepo.ApplicationRepo,
	notify Notifier,
) AdminService {
	return &adminService{
		db:           db,
		log:          baseLog.With("service", "AdminService"),
		users:        users,
		lessons:      lessons,
		posts:        posts,
		jobs:         jobs,
		applications: applications,
		notify:       notify,
	}
}

func (s *adminService) Dashboard(dbc dbctx.Context) (*Dashboard, error) {
	out := &Dashboard{}
	yes := true
	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	sub := dbctx.Context{Ctx: gctx, Tx: dbc.Tx}

	count := func(dst *int64, fn func() (int64, error)) {
		g.Go(func() error {
			n, err := fn()
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&out.Users.Total, func() (int64, error) { return s.users.Count(sub, userrepo.Filter{}) })
	count(&out.Users.Admins, func() (int64, error) { return s.users.Count(sub, userrepo.Filter{IsAdmin: &yes}) })
	count(&out.Users.Publishers, func() (int64, error) { return s.users.Count(sub, userrepo.Filter{IsPublisher: &yes}) })
	count(&out.Content.Lessons, func() (int64, error) { return s.lessons.Count(sub) })
	count(&out.Content.BlogPosts, func() (int64, error) { return s.posts.Count(sub) })
	count(&out.Applications.Total, func() (int64, error) { return s.applications.Count(sub, "") })
	count(&out.Applications.Pending, func() (int64, error) { return s.applications.Count(sub, types.ApplicationPending) })
	count(&out.Jobs.Total, func() (int64, error) { return s.jobs.Count(sub, "") })
	count(&out.Jobs.Open, func() (int64, error) { return s.jobs.Count(sub, types.JobOpen) })

	g.Go(func() (err error) {
		out.Users.Recent, err = s.users.Recent(sub, 5)
		return err
	})
	g.Go(func() (err error) {
		out.Jobs.Recent, err = s.jobs.Recent(sub, 10)
		return err
	})
	g.Go(func() (err error) {
		out.Applications.Recent, err = s.applications.Recent(sub, 10)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return out, nil
}

func (s *adminService) ListUsers(dbc dbctx.Context, page, limit int) (*Page[*types.User], error) {
	page, limit = normalizePage(page, limit, 20)
	rows, total, err := s.users.Page(dbc, userrepo.Filter{}, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return newPage(rows, total, limit), nil
}

func (s *adminService) GetUser(dbc dbctx.Context, id uint) (*types.User, error) {
	u, err := s.users.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	return u, nil
}

func (s *adminService) SetAdmin(dbc dbctx.Context, adminID, userID uint, isAdmin bool) (*types.User, error) {
	if adminID == userID && !isAdmin {
		return nil, apierr.BadRequest("self_demotion", "you cannot remove your own admin role")
	}
	u, err := s.GetUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(dbc, userID, map[string]interface{}{"is_admin": isAdmin}); err != nil {
		return nil, fmt.Errorf("update admin flag: %w", err)
	}
	u.IsAdmin = isAdmin
	s.log.Info("admin flag changed", "user_id", userID, "is_admin", isAdmin, "by", adminID)
	return u, nil
}

func (s *adminService) SetPublisher(dbc dbctx.Context, userID uint, isPublisher bool) (*types.User, error) {
	u, err := s.GetUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(dbc, userID, map[string]interface{}{"is_publisher": isPublisher}); err != nil {
		return nil, fmt.Errorf("update publisher flag: %w", err)
	}
	u.IsPublisher = isPublisher
	return u, nil
}

// DeleteUser refuses while the user still owns content or has enrollment,
// payment or application history. Personal rows go with the account.
func (s *adminService) DeleteUser(dbc dbctx.Context, userID uint) error {
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		u, err := s.GetUser(inner, userID)
		if err != nil {
			return err
		}
		if u.IsAdmin {
			return apierr.BadRequest("cannot_delete_admin", "administrators cannot be deleted")
		}
		owned, err := s.users.CountOwned(inner, userID)
		if err != nil {
			return fmt.Errorf("count owned rows: %w", err)
		}
		if len(owned) > 0 {
			tables := make([]string, 0, len(owned))
			for table := range owned {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			return apierr.BadRequest("user_has_dependents", "user still has "+strings.Join(tables, ", "))
		}
		if err := s.users.Delete(inner, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", userID)
	return nil
}

func (s *adminService) ListApplications(dbc dbctx.Context, status types.ApplicationStatus, page, limit int) (*Page[*types.JobApplication], error) {
	page, limit = normalizePage(page, limit, 20)
	rows, total, err := s.applications.Page(dbc, status, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return newPage(rows, total, limit), nil
}

func (s *adminService) ApproveApplication(dbc dbctx.Context, adminID, applicationID uint, in ApplicationStatusInput) (*types.JobApplication, error) {
	app, err := s.applications.GetByID(dbc, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, apierr.NotFound("application_not_found", "application not found")
	}
	in.Notes = ""
	if err := reviewApplication(s.applications, dbc, app, adminID, in, time.Now()); err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.ApplicationStatusChanged(dbc.Ctx, app)
	}
	return app, nil
}

func (s *adminService) ListLessons(dbc dbctx.Context, page, limit int) (*Page[*types.Lesson], error) {
	page, limit = normalizePage(page, limit, 20)
	rows, total, err := s.lessons.Page(dbc, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return newPage(rows, total, limit), nil
}

func (s *adminService) DeleteLesson(dbc dbctx.Context, lessonID uint) error {
	l, err := s.lessons.GetByID(dbc, lessonID)
	if err != nil {
		return fmt.Errorf("load lesson: %w", err)
	}
	if l == nil {
		return apierr.NotFound("lesson_not_found", "lesson not found")
	}
	if err := s.lessons.DeleteCascade(dbc, lessonID); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	s.log.Info("lesson deleted by admin", "lesson_id", lessonID)
	return nil
}

func (s *adminService) ListBlogPosts(dbc dbctx.Context, page, limit int) (*Page[*types.BlogPost], error) {
	page, limit = normalizePage(page, limit, 20)
	rows, total, err := s.posts.Page(dbc, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return newPage(rows, total, limit), nil
}

func (s *adminService) DeleteBlogPost(dbc dbctx.Context, postID uint) error {
	p, err := s.posts.GetByID(dbc, postID)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}
	if p == nil {
		return apierr.NotFound("post_not_found", "post not found")
	}
	if err := s.posts.DeleteCascade(dbc, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.log.Info("blog post deleted by admin", "post_id", postID)
	return nil
}
