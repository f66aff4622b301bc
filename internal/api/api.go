package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/homedeck/homedeck/internal/api/handler"
	"github.com/homedeck/homedeck/internal/api/middleware"
	"github.com/homedeck/homedeck/internal/auth"
	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/config"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/homedeck/homedeck/internal/service"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	db        database.DB
	issuer    *auth.Issuer
	cache     *cache.AppCache
	metrics   *middleware.Metrics
	version   string
}

// New creates the HTTP server. appCache may be nil.
func New(cfg *config.Config, db database.DB, appCache *cache.AppCache, version string) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	binding.EnableDecoderDisallowUnknownFields = true

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		db:        db,
		issuer:    auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn),
		cache:     appCache,
		metrics:   middleware.NewMetrics(),
		version:   version,
	}
	// gin trusts every proxy unless told otherwise
	if err := s.ginEngine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.ginEngine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		s.metrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.BodyLimit(middleware.MaxBodyBytes),
	)
	if s.cfg.Gzip {
		s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	if s.cfg.CORS != nil {
		s.ginEngine.Use(middleware.CORS(s.cfg.CORS.Origin))
	}
	if s.cfg.RateLimit != nil && s.cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst, "/health")
		s.ginEngine.Use(limiter.Handler())
	}
}

func (s *Server) setupRoutes() {
	var appCache service.AppListCache
	var cacheStats handler.CacheStatser
	if s.cache != nil {
		appCache = s.cache
		cacheStats = s.cache
	}

	h := handler.New(
		service.NewAuthService(s.db, s.issuer),
		service.NewAppService(s.db, appCache),
		service.NewMemoService(s.db),
	)
	sys := handler.NewSystem(s.db, cacheStats, s.cfg.ServerURL, s.version)

	s.ginEngine.NoRoute(middleware.NoRoute)

	s.ginEngine.GET("/health", sys.Health)
	s.ginEngine.GET("/swagger", sys.SwaggerUI)
	s.ginEngine.GET("/swagger.json", sys.SwaggerJSON)
	s.ginEngine.GET("/metrics", s.metrics.Handler())

	authGroup := s.ginEngine.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)

	protected := s.ginEngine.Group("/")
	protected.Use(middleware.RequireAuth(s.issuer))

	for _, prefix := range []string{"/apps", "/me/apps"} {
		apps := protected.Group(prefix)
		apps.GET("", h.GetUserApps)
		apps.PUT("/order", h.UpdateAppOrder)
	}
	protected.GET("/apps/catalog", h.GetAppCatalog)

	memos := protected.Group("/memos")
	memos.GET("", h.ListMemos)
	memos.POST("", h.CreateMemo)
	memos.GET("/:id", h.GetMemo)
	memos.PATCH("/:id", h.UpdateMemo)
	memos.DELETE("/:id", h.DeleteMemo)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
