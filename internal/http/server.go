package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/reqdesk/backend/internal/auth"
	"github.com/example/reqdesk/backend/internal/repository"
	"github.com/example/reqdesk/backend/internal/service"
)

// Server wraps the gin engine and collaborators needed to handle API
// requests. Everything is injected at construction; no package-level state.
type Server struct {
	Engine *gin.Engine

	requests    *repository.RequestRepository
	categories  *repository.CategoryRepository
	users       *repository.UserRepository
	lifecycle   *service.LifecycleService
	attachments *service.AttachmentService
	comments    *service.CommentService
	creator     *service.RequestService
	stats       *service.StatisticsService
	verifier    *auth.Verifier
	authClient  *auth.Client
}

// Deps bundles the server's collaborators.
type Deps struct {
	Requests    *repository.RequestRepository
	Categories  *repository.CategoryRepository
	Users       *repository.UserRepository
	Lifecycle   *service.LifecycleService
	Attachments *service.AttachmentService
	Comments    *service.CommentService
	Creator     *service.RequestService
	Stats       *service.StatisticsService
	Verifier    *auth.Verifier
	AuthClient  *auth.Client
}

// NewServer constructs a new API server and registers routes.
func NewServer(d Deps) *Server {
	router := gin.Default()
	srv := &Server{
		Engine:      router,
		requests:    d.Requests,
		categories:  d.Categories,
		users:       d.Users,
		lifecycle:   d.Lifecycle,
		attachments: d.Attachments,
		comments:    d.Comments,
		creator:     d.Creator,
		stats:       d.Stats,
		verifier:    d.Verifier,
		authClient:  d.AuthClient,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.Engine.Use(metricsMiddleware())

	s.Engine.GET("/healthz", s.health)
	s.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := s.Engine.Group("/", s.authRequired())
	authed.GET("/categories", s.listCategories)
	authed.GET("/get-user-and-categories", s.userAndCategories)
	authed.GET("/requests", s.listRequests)
	authed.GET("/requests/:id", s.getRequest)
	authed.POST("/requests/:id/comments", s.appendComment)
	authed.POST("/requests/:id/attachments", s.uploadAttachments)
	authed.POST("/create-request", s.createRequest)
	authed.POST("/logout", s.logout)

	admin := authed.Group("/admin", s.adminRequired())
	admin.GET("", s.adminQueue)
	admin.POST("/:id", s.adminTransition)
	admin.GET("/statistics", s.adminStatistics)
	admin.GET("/users", s.adminUsers)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
