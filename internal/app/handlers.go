package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edulearn/edulearn-backend/internal/http"
	httpH "github.com/edulearn/edulearn-backend/internal/http/handlers"
	httpMW "github.com/edulearn/edulearn-backend/internal/http/middleware"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	Lesson  *httpH.LessonHandler
	Podcast *httpH.PodcastHandler
	Social  *httpH.SocialHandler
	Blog    *httpH.BlogHandler
	Job     *httpH.JobHandler
	Admin   *httpH.AdminHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Auth:    httpH.NewAuthHandler(log, services.Auth),
		Lesson:  httpH.NewLessonHandler(log, services.Lesson, services.Enrollment, services.Progress),
		Podcast: httpH.NewPodcastHandler(log, services.Podcast),
		Social:  httpH.NewSocialHandler(log, services.Social),
		Blog:    httpH.NewBlogHandler(log, services.Blog),
		Job:     httpH.NewJobHandler(log, services.Jobs),
		Admin:   httpH.NewAdminHandler(log, services.Admin),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		TracingEnabled: cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: middleware.Auth,
		HealthHandler:  handlers.Health,
		AuthHandler:    handlers.Auth,
		LessonHandler:  handlers.Lesson,
		PodcastHandler: handlers.Podcast,
		SocialHandler:  handlers.Social,
		BlogHandler:    handlers.Blog,
		JobHandler:     handlers.Job,
		AdminHandler:   handlers.Admin,
	})
}
