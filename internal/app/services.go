package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/edulearn/edulearn-backend/internal/clients/social"
	"github.com/edulearn/edulearn-backend/internal/jobs/scheduler"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/platform/sendgrid"
	"github.com/edulearn/edulearn-backend/internal/realtime/bus"
	"github.com/edulearn/edulearn-backend/internal/services"
)

type Clients struct {
	Bus    bus.Bus
	Mailer sendgrid.Client
	Social *social.Client
}

func wireClients(log *logger.Logger, cfg Config) Clients {
	log.Info("Wiring clients...")
	return Clients{
		Bus:    bus.NewFromConfig(log, cfg.RedisAddr, cfg.RedisChannel),
		Mailer: sendgrid.NewFromConfig(log, cfg.SendGrid),
		Social: social.New(log, cfg.Social),
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}

type Services struct {
	// Auth
	Auth services.AuthService

	// Lessons core
	Access     services.AccessService
	Lesson     services.LessonService
	Enrollment services.EnrollmentService
	Progress   services.ProgressService

	// Media
	Social  services.SocialService
	Podcast services.PodcastService

	Blog  services.BlogService
	Jobs  services.JobService
	Admin services.AdminService

	Notifier  services.Notifier
	Scheduler *scheduler.Scheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	notify := services.NewNotifier(log, clients.Bus, clients.Mailer, repos.User)

	auth := services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	access := services.NewAccessService(db, log, repos.Learning.Enrollment)
	lesson := services.NewLessonService(
		db, log, access, repos.User,
		repos.Learning.Lesson,
		repos.Learning.Module,
		repos.Learning.Content,
		repos.Learning.Enrollment,
	)
	enrollment := services.NewEnrollmentService(
		db, log,
		repos.Learning.Lesson,
		repos.Learning.Enrollment,
		repos.Learning.Payment,
		services.StubGateway{},
		notify,
	)
	progress := services.NewProgressService(
		db, log, access,
		repos.Learning.Lesson,
		repos.Learning.Content,
		repos.Learning.Enrollment,
		repos.Learning.Progress,
		notify,
	)

	socialSvc := services.NewSocialService(db, log, repos.Media.SocialAccount, clients.Social, cfg.AppURL)
	podcast := services.NewPodcastService(db, log, repos.User, repos.Media.Podcast, socialSvc, notify)

	blog := services.NewBlogService(db, log, repos.User, repos.Blog.Post, repos.Blog.Comment, repos.Blog.Like)
	jobs := services.NewJobService(db, log, repos.Careers.Job, repos.Careers.Application, notify)
	admin := services.NewAdminService(
		db, log, repos.User,
		repos.Learning.Lesson,
		repos.Blog.Post,
		repos.Careers.Job,
		repos.Careers.Application,
		notify,
	)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		s, err := scheduler.New(log, cfg.Scheduler, enrollment, podcast)
		if err != nil {
			return Services{}, fmt.Errorf("init scheduler: %w", err)
		}
		sched = s
	}

	return Services{
		Auth:       auth,
		Access:     access,
		Lesson:     lesson,
		Enrollment: enrollment,
		Progress:   progress,
		Social:     socialSvc,
		Podcast:    podcast,
		Blog:       blog,
		Jobs:       jobs,
		Admin:      admin,
		Notifier:   notify,
		Scheduler:  sched,
	}, nil
}
