package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/background"
	"pagecraft-backend/internal/config"
	"pagecraft-backend/internal/handlers"
	"pagecraft-backend/internal/layouts"
	"pagecraft-backend/internal/metrics"
	"pagecraft-backend/internal/middleware"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/seed"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/storage"
	"pagecraft-backend/internal/validation"
	"pagecraft-backend/pkg/cache"
	"pagecraft-backend/pkg/logger"
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	store       storage.Store
	tasks       *background.Queue
	rateLimiter *middleware.RateLimitManager

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	router *gin.Engine
	server *http.Server

	cancel context.CancelFunc
}

type repositoryContainer struct {
	User      repository.UserRepository
	Tenant    repository.TenantRepository
	Template  repository.TemplateRepository
	Content   repository.ContentRepository
	Feedback  repository.FeedbackRepository
	Question  repository.QuestionRepository
	Response  repository.ResponseRepository
	ShortLink repository.ShortLinkRepository
}

type serviceContainer struct {
	Auth      *service.AuthService
	User      *service.UserService
	Tenant    *service.TenantService
	Template  *service.TemplateService
	Upload    *service.UploadService
	Content   *service.ContentService
	Feedback  *service.FeedbackService
	Question  *service.QuestionService
	ShortLink *service.ShortLinkService
}

type handlerContainer struct {
	Auth      *handlers.AuthHandler
	Admin     *handlers.AdminHandler
	Template  *handlers.TemplateHandler
	Content   *handlers.ContentHandler
	Page      *handlers.PageHandler
	Feedback  *handlers.FeedbackHandler
	Question  *handlers.QuestionHandler
	ShortLink *handlers.ShortLinkHandler
	Health    *handlers.HealthHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{cfg: cfg, cancel: cancel}

	if cfg.EnableMetrics {
		metrics.Init()
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, err
	}
	if err := app.runMigrations(); err != nil {
		cancel()
		return nil, err
	}
	if err := app.initStorage(); err != nil {
		cancel()
		return nil, err
	}

	app.initCache()
	app.initBackground(ctx)
	app.initRepositories()
	app.initServices()
	app.seed()
	app.initHandlers()
	app.initRouter()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if a.server != nil {
		shutdownErr = a.server.Shutdown(ctx)
	}

	if a.rateLimiter != nil {
		if err := a.rateLimiter.Shutdown(); err != nil {
			logger.Error(err, "Failed to stop rate limiter", nil)
		}
	}

	if a.tasks != nil {
		if err := a.tasks.Shutdown(ctx); err != nil {
			logger.Error(err, "Background tasks did not finish", nil)
		}
	}
	if a.cancel != nil {
		a.cancel()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error(err, "Failed to close database connection", nil)
			}
		}
	}

	return shutdownErr
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initDatabase() error {
	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Template{},
		&models.Content{},
		&models.Feedback{},
		&models.Question{},
		&models.Response{},
		&models.ShortLink{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_templates_published ON templates(slug) WHERE status = 'published'",
		"CREATE INDEX IF NOT EXISTS idx_contents_sections ON contents USING GIN (sections)",
	}
	for _, stmt := range statements {
		if err := a.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	logger.Info("Database migration completed", nil)
	return nil
}

// initCache falls back to a disabled cache when Redis is unreachable so the
// service still starts.
func (a *Application) initCache() {
	enabled := a.cfg.EnableCache && a.cfg.EnableRedis
	c, err := cache.NewCache(a.cfg.RedisURL, enabled)
	if err != nil {
		logger.Error(err, "Redis unavailable, continuing without cache", map[string]interface{}{"addr": a.cfg.RedisURL})
		c, _ = cache.NewCache("", false)
	}
	a.cache = c
}

func (a *Application) initStorage() error {
	if a.cfg.RemoteStoreURL != "" {
		a.store = storage.NewRemoteStore(storage.RemoteConfig{
			BaseURL:   a.cfg.RemoteStoreURL,
			PublicURL: a.cfg.RemoteStorePublicURL,
			Token:     a.cfg.RemoteStoreToken,
		})
		logger.Info("Uploads go to the remote asset host", map[string]interface{}{"url": a.cfg.RemoteStoreURL})
		return nil
	}

	local, err := storage.NewLocalStore(a.cfg.UploadDir, a.cfg.UploadURL)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}
	a.store = local
	return nil
}

func (a *Application) initBackground(ctx context.Context) {
	a.tasks = background.NewQueue(background.Config{Workers: 2, QueueSize: 256})
	a.tasks.Start(ctx)

	a.rateLimiter = middleware.NewRateLimitManager(ctx, middleware.RateLimitConfig{
		Requests:       a.cfg.RateLimitRequests,
		WindowSeconds:  a.cfg.RateLimitWindow,
		Burst:          a.cfg.RateLimitBurst,
		UploadRequests: a.cfg.UploadRateLimitRequests,
		UploadWindow:   a.cfg.UploadRateLimitWindow,
	})
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		User:      repository.NewUserRepository(a.db),
		Tenant:    repository.NewTenantRepository(a.db),
		Template:  repository.NewTemplateRepository(a.db),
		Content:   repository.NewContentRepository(a.db),
		Feedback:  repository.NewFeedbackRepository(a.db),
		Question:  repository.NewQuestionRepository(a.db),
		Response:  repository.NewResponseRepository(a.db),
		ShortLink: repository.NewShortLinkRepository(a.db),
	}
}

func (a *Application) initServices() {
	tokenTTL := time.Duration(a.cfg.JWTTTLHrs) * time.Hour

	uploads := service.NewUploadService(a.store, a.cfg.MaxUploadSize)
	uploads.UseQueue(a.tasks)

	templates := service.NewTemplateService(a.repositories.Template, a.cache, sections.DefaultRegistry())

	a.services = serviceContainer{
		Auth:     service.NewAuthService(a.repositories.User, a.repositories.Tenant, a.cfg.JWTSecret, tokenTTL),
		User:     service.NewUserService(a.repositories.User, a.repositories.Tenant),
		Tenant:   service.NewTenantService(a.repositories.Tenant),
		Template: templates,
		Upload:   uploads,
		Content: service.NewContentService(
			a.repositories.Content,
			templates,
			uploads,
			validation.NewEngine(a.uploadPrefix()),
			layouts.DefaultRegistry(),
			a.cfg.DefaultLayout,
		),
		Feedback:  service.NewFeedbackService(a.repositories.Feedback),
		Question:  service.NewQuestionService(a.repositories.Question, a.repositories.Response),
		ShortLink: service.NewShortLinkService(a.repositories.ShortLink, a.cache),
	}
}

// uploadPrefix is the URL prefix under which stored uploads are served.
func (a *Application) uploadPrefix() string {
	if a.cfg.RemoteStoreURL == "" {
		return a.cfg.UploadURL
	}
	public := a.cfg.RemoteStorePublicURL
	if public == "" {
		public = a.cfg.RemoteStoreURL
	}
	return strings.TrimRight(public, "/") + "/"
}

func (a *Application) seed() {
	owner := seed.EnsureSuperadmin(a.services.Auth, a.repositories.User, a.cfg.SuperadminEmail, a.cfg.SuperadminPassword)
	if a.cfg.SeedTemplates {
		seed.EnsureDefaultTemplates(a.services.Template, owner)
	}
}

func (a *Application) initHandlers() {
	tokenTTL := time.Duration(a.cfg.JWTTTLHrs) * time.Hour

	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if a.cache.Enabled() {
		checks["cache"] = a.cache
	}

	a.handlers = handlerContainer{
		Auth:      handlers.NewAuthHandler(a.services.Auth, tokenTTL),
		Admin:     handlers.NewAdminHandler(a.services.User, a.services.Tenant),
		Template:  handlers.NewTemplateHandler(a.services.Template),
		Content:   handlers.NewContentHandler(a.services.Content),
		Page:      handlers.NewPageHandler(a.services.Template, a.services.Content),
		Feedback:  handlers.NewFeedbackHandler(a.services.Feedback),
		Question:  handlers.NewQuestionHandler(a.services.Question),
		ShortLink: handlers.NewShortLinkHandler(a.services.ShortLink, strings.TrimRight(a.cfg.PublicURL, "/")),
		Health:    handlers.NewHealthHandler(checks),
	}
}

func (a *Application) mediaHosts() []string {
	var hosts []string
	for _, raw := range []string{a.cfg.RemoteStoreURL, a.cfg.RemoteStorePublicURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			hosts = append(hosts, u.Scheme+"://"+u.Host)
		}
	}
	return hosts
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware(a.mediaHosts(), middleware.DefaultFrameHosts))
	router.Use(middleware.RateLimitMiddleware(a.rateLimiter))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-CSRF-Token", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.CSRFMiddleware())

	auth := middleware.AuthMiddleware(a.services.Auth)
	optionalAuth := middleware.OptionalAuthMiddleware(a.services.Auth)
	uploadLimit := middleware.UploadRateLimitMiddleware(a.rateLimiter)
	require := middleware.RequirePermission

	router.GET("/health", a.handlers.Health.Health)
	router.GET("/ready", a.handlers.Health.Ready)
	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if a.cfg.RemoteStoreURL == "" {
		uploads := router.Group("/uploads", middleware.UploadsProtection())
		uploads.Static("/", a.cfg.UploadDir)
	}

	router.GET("/s/:code", a.handlers.ShortLink.Redirect)

	pages := router.Group("")
	{
		pages.GET("/content/:id/render", optionalAuth, a.handlers.Page.RenderContent)

		member := pages.Group("", auth)
		member.GET("/templates/:id/form", a.handlers.Page.TemplateForm)
		member.POST("/templates/:id/form", uploadLimit, a.handlers.Page.SubmitTemplateForm)
		member.GET("/content/:id/edit", a.handlers.Page.EditForm)
		member.POST("/content/:id/edit", uploadLimit, a.handlers.Page.SubmitEditForm)
	}

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		{
			public.POST("/register", a.handlers.Auth.Register)
			public.POST("/login", a.handlers.Auth.Login)
			public.POST("/logout", a.handlers.Auth.Logout)

			public.GET("/sections", a.handlers.Template.Catalogue)
			public.GET("/layouts", a.handlers.Content.Layouts)
			public.GET("/templates", a.handlers.Template.ListPublished)
			public.GET("/templates/slug/:slug", a.handlers.Template.GetBySlug)
			public.GET("/templates/:id/form", a.handlers.Template.Form)
			public.GET("/content/:id/render", a.handlers.Content.Render)
		}

		protected := v1.Group("", auth)
		{
			protected.GET("/profile", a.handlers.Auth.GetProfile)
			protected.PUT("/profile", a.handlers.Auth.UpdateProfile)
			protected.PUT("/profile/password", a.handlers.Auth.ChangePassword)

			protected.POST("/content", uploadLimit, a.handlers.Content.Submit)
			protected.GET("/content/mine", a.handlers.Content.ListMine)
			protected.GET("/content/:id", a.handlers.Content.GetByID)
			protected.PUT("/content/:id", uploadLimit, a.handlers.Content.Update)
			protected.DELETE("/content/:id", a.handlers.Content.Delete)

			protected.POST("/feedback", a.handlers.Feedback.Create)

			protected.GET("/questions", a.handlers.Question.List)
			protected.GET("/questions/:id", a.handlers.Question.GetByID)
			protected.POST("/questions/:id/answer", a.handlers.Question.Answer)
			protected.GET("/responses/mine", a.handlers.Question.MyResponses)

			protected.POST("/links", a.handlers.ShortLink.Create)
			protected.GET("/links", a.handlers.ShortLink.ListMine)
			protected.DELETE("/links/:id", a.handlers.ShortLink.Delete)
		}

		admin := v1.Group("/admin", auth)
		{
			templates := admin.Group("/templates", require(authorization.PermissionManageTemplates))
			templates.GET("", a.handlers.Template.List)
			templates.POST("", a.handlers.Template.Create)
			templates.GET("/:id", a.handlers.Template.GetByID)
			templates.PUT("/:id", a.handlers.Template.Update)
			templates.DELETE("/:id", a.handlers.Template.Delete)
			templates.PUT("/:id/publish", a.handlers.Template.Publish)
			templates.PUT("/:id/archive", a.handlers.Template.Archive)
			templates.POST("/:id/sections", a.handlers.Template.AddSection)
			templates.PUT("/:id/sections/move", a.handlers.Template.MoveSection)
			templates.DELETE("/:id/sections/:section_id", a.handlers.Template.RemoveSection)
			templates.PUT("/:id/sections/:section_id/field", a.handlers.Template.UpdateSectionField)
			templates.PUT("/:id/sections/:section_id/config", a.handlers.Template.UpdateSectionConfig)

			users := admin.Group("", require(authorization.PermissionManageUsers))
			users.GET("/users", a.handlers.Admin.ListUsers)
			users.PUT("/users/:id/role", a.handlers.Admin.UpdateUserRole)
			users.DELETE("/users/:id", a.handlers.Admin.DeleteUser)
			users.GET("/admins", a.handlers.Admin.ListAdmins)
			users.POST("/admins", a.handlers.Admin.CreateAdmin)

			tenants := admin.Group("/tenants", require(authorization.PermissionManageTenants))
			tenants.GET("", a.handlers.Admin.ListTenants)
			tenants.POST("", a.handlers.Admin.CreateTenant)
			tenants.GET("/:id", a.handlers.Admin.GetTenant)
			tenants.POST("/:id/token", a.handlers.Admin.RegenerateTenantToken)
			tenants.DELETE("/:id", a.handlers.Admin.DeleteTenant)

			admin.GET("/feedback", require(authorization.PermissionReviewFeedback), a.handlers.Feedback.List)
			admin.DELETE("/feedback/:id", require(authorization.PermissionReviewFeedback), a.handlers.Feedback.Delete)

			questions := admin.Group("/questions", require(authorization.PermissionManageQuestions))
			questions.POST("", a.handlers.Question.Create)
			questions.PUT("/:id", a.handlers.Question.Update)
			questions.DELETE("/:id", a.handlers.Question.Delete)

			review := admin.Group("", require(authorization.PermissionReviewResponses))
			review.GET("/responses", a.handlers.Question.ListResponses)
			review.GET("/questions/:id/responses", a.handlers.Question.ResponsesFor)
			review.GET("/content", a.handlers.Content.List)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "route not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	a.router = router
}

// IsServerClosed reports whether err is the normal result of Shutdown.
func IsServerClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}
