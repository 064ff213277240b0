package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/edulearn/edulearn-backend/internal/http/handlers"
	httpMW "github.com/edulearn/edulearn-backend/internal/http/middleware"
	"github.com/edulearn/edulearn-backend/internal/http/response"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler  *httpH.HealthHandler
	AuthHandler    *httpH.AuthHandler
	LessonHandler  *httpH.LessonHandler
	PodcastHandler *httpH.PodcastHandler
	SocialHandler  *httpH.SocialHandler
	BlogHandler    *httpH.BlogHandler
	JobHandler     *httpH.JobHandler
	AdminHandler   *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	am := cfg.AuthMiddleware
	requireAuth := am.RequireAuth()
	optionalAuth := am.OptionalAuth()

	// Auth
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.GET("/me", requireAuth, cfg.AuthHandler.Me)
	}

	// Lessons
	if h := cfg.LessonHandler; h != nil {
		g := api.Group("/lessons")
		g.GET("", optionalAuth, h.ListLessons)
		g.GET("/my/created", requireAuth, h.ListMyLessons)
		g.GET("/my/enrollments", requireAuth, h.ListMyEnrollments)
		g.GET("/contents/:contentId", requireAuth, h.GetContent)
		g.GET("/:id", optionalAuth, h.GetLesson)
		g.GET("/:id/progress", requireAuth, h.GetLessonProgress)
		g.POST("", requireAuth, h.CreateLesson)
		g.POST("/enroll", requireAuth, h.Enroll)
		g.POST("/progress", requireAuth, h.UpdateProgress)
		g.POST("/modules/:moduleId/contents", requireAuth, h.CreateContent)
		g.POST("/:id/modules", requireAuth, h.CreateModule)
		g.POST("/:id/publish", requireAuth, h.PublishLesson)
		g.PUT("/:id", requireAuth, h.UpdateLesson)
		g.DELETE("/:id", requireAuth, h.DeleteLesson)
	}

	// Podcasts
	if h := cfg.PodcastHandler; h != nil {
		g := api.Group("/podcasts")
		g.GET("", h.List)
		g.GET("/search", h.Search)
		g.GET("/my-podcasts", requireAuth, h.ListMine)
		g.GET("/:id", h.Get)
		g.POST("", requireAuth, h.Create)
		g.POST("/:id/publish", requireAuth, h.Publish)
		g.POST("/:id/like", requireAuth, h.Like)
		g.PUT("/:id", requireAuth, h.Update)
		g.DELETE("/:id", requireAuth, h.Delete)
	}

	// Social accounts
	if h := cfg.SocialHandler; h != nil {
		g := api.Group("/social", requireAuth)
		g.GET("/accounts", h.ListAccounts)
		g.POST("/connect", h.Connect)
		g.DELETE("/disconnect/:platform", h.Disconnect)
	}

	// Blog
	if h := cfg.BlogHandler; h != nil {
		g := api.Group("/blog")
		g.GET("/posts", h.ListPosts)
		g.GET("/posts/popular", h.Popular)
		g.GET("/posts/search", h.Search)
		g.GET("/posts/category/:category", h.ByCategory)
		g.GET("/posts/:slug", optionalAuth, h.GetPost)
		g.GET("/my/posts", requireAuth, h.ListMine)
		g.POST("/posts", requireAuth, h.CreatePost)
		g.PUT("/posts/:id", requireAuth, h.UpdatePost)
		g.POST("/posts/:id/publish", requireAuth, h.PublishPost)
		g.DELETE("/posts/:id", requireAuth, h.DeletePost)
		g.POST("/posts/:id/comments", requireAuth, h.AddComment)
		g.POST("/posts/:id/like", requireAuth, h.ToggleLike)
		g.PUT("/comments/:id", requireAuth, h.UpdateComment)
		g.DELETE("/comments/:id", requireAuth, h.DeleteComment)
	}

	// Jobs
	if h := cfg.JobHandler; h != nil {
		g := api.Group("/jobs")
		g.GET("", h.List)
		g.GET("/search", h.Search)
		g.GET("/my/postings", requireAuth, h.ListMine)
		g.GET("/my/applications", requireAuth, h.ListMyApplications)
		g.GET("/:id", optionalAuth, h.GetBySlug)
		g.GET("/:id/applications", requireAuth, h.ListApplications)
		g.GET("/:id/statistics", requireAuth, h.Statistics)
		g.POST("", requireAuth, h.Create)
		g.PUT("/:id", requireAuth, h.Update)
		g.POST("/:id/publish", requireAuth, h.Publish)
		g.POST("/:id/close", requireAuth, h.Close)
		g.DELETE("/:id", requireAuth, h.Delete)
		g.POST("/:id/apply", requireAuth, h.Apply)
		g.PUT("/applications/:id/status", requireAuth, h.UpdateApplicationStatus)
		g.POST("/applications/:id/withdraw", requireAuth, h.Withdraw)
	}

	// Admin
	if h := cfg.AdminHandler; h != nil {
		g := api.Group("/admin", requireAuth, am.RequireAdmin())
		g.GET("/dashboard", h.Dashboard)
		g.GET("/users", h.ListUsers)
		g.GET("/users/:id", h.GetUser)
		g.PUT("/users/:id/admin", h.SetAdmin)
		g.PUT("/users/:id/publisher", h.SetPublisher)
		g.DELETE("/users/:id", h.DeleteUser)
		g.GET("/applications", h.ListApplications)
		g.PUT("/applications/:id/approve", h.ApproveApplication)
		g.GET("/lessons", h.ListLessons)
		g.DELETE("/lessons/:id", h.DeleteLesson)
		g.GET("/blog-posts", h.ListBlogPosts)
		g.DELETE("/blog-posts/:id", h.DeleteBlogPost)
	}

	return r
}
