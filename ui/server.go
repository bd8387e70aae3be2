package ui

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"opsdash/app"
	"opsdash/internal"
	"opsdash/internal/errors"
	"opsdash/ui/middleware"
)

// Server is the JSON API over the dashboard service
type Server struct {
	router         *gin.Engine
	handler        http.Handler
	service        *app.DashboardService
	logger         *internal.Logger
	maxUploadBytes int64

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates the API server and registers its routes
func NewServer(service *app.DashboardService, logger *internal.Logger, maxUploadBytes int64) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &Server{
		router:         gin.New(),
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.handler = s.wrapTransport()
	return s
}

// Handler exposes the full handler chain for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.handler
}

// wrapTransport puts the net/http level middleware in front of gin
func (s *Server) wrapTransport() http.Handler {
	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Compress(5))
	mux.Handle("/*", s.router)
	return mux
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.NoRoute(func(c *gin.Context) {
		s.respondError(c, errors.NotFound("route "+c.Request.URL.Path))
	})

	api := s.router.Group("/api")
	{
		datasets := api.Group("/datasets")
		datasets.POST("", s.handleImportDataset)
		datasets.GET("", s.handleListDatasets)
		datasets.DELETE("", s.handleClearDatasets)
		datasets.GET("/:id", s.handleGetDataset)
		datasets.DELETE("/:id", s.handleRemoveDataset)
		datasets.GET("/:id/analysis", s.handleAnalyzeDataset)
		datasets.GET("/:id/metrics", s.handleScenarioMetrics)

		api.GET("/kpis/:domain", s.handleKPIs)
		api.GET("/charts/:domain/:shape", s.handleChart)
		api.GET("/timeseries/:domain", s.handleTimeSeries)
		api.GET("/overview", s.handleOverview)
		api.POST("/scenarios", s.handleScenario)
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error("[Server] panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		s.respondError(c, errors.InternalError("internal server error"))
	}))
	s.router.Use(middleware.RequestLogger(s.logger))
	if s.maxUploadBytes > 0 {
		s.router.Use(middleware.BodyLimit(s.maxUploadBytes + multipartOverhead))
	}
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("[Server] listening on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("[Server] shutting down")
	return srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
