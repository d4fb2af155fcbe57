package server

import (
	"fmt"
	"net/http"
	"time"

	"catalog-backend/internal/config"
	"catalog-backend/internal/database"
	custommiddleware "catalog-backend/internal/middleware"
	"catalog-backend/internal/repository"
	"catalog-backend/internal/service"
	"catalog-backend/internal/storage"
	"catalog-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      database.Service
	redis   *redis.Client
	objects *storage.HTTPObjectValidator
	metrics *custommiddleware.Metrics
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	if db := s.db.DB(); db != nil {
		registry.MustRegister(collectors.NewDBStatsCollector(db, s.config.Database.Database))
	}
	s.metrics = custommiddleware.NewMetrics(registry)

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(s.metrics.Middleware)
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))
	router.Use(custommiddleware.CORSMiddleware(s.config.Server.AllowedOrigins, s.config.Server.IsDevelopment()))

	// Health check endpoint
	router.Get("/health", s.health)
	router.Handle("/metrics", s.metrics.Handler())

	// Initialize repositories
	productRepo := repository.NewProductRepository(s.db.DB(), s.logger)
	categoryRepo := repository.NewCategoryRepository(s.db.DB())
	materialRepo := repository.NewMaterialRepository(s.db.DB())

	// A nil *HTTPObjectValidator must not end up inside the interface
	var objectValidator service.ObjectValidator
	if v := storage.NewHTTPObjectValidator(s.config.ObjectStorage, s.logger); v != nil {
		s.objects = v
		objectValidator = v
	}

	// Initialize services
	productService := service.NewProductService(productRepo, objectValidator, s.logger)
	categoryService := service.NewCategoryService(categoryRepo)
	materialService := service.NewMaterialService(materialRepo)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: s.config.RateLimit.Requests,
			Window:            s.config.RateLimit.Window,
			KeyPrefix:         "catalog_rate_limit",
		}, s.logger))
		r.Use(custommiddleware.RequireJSON(s.logger))

		transport.NewProductHandler(productService, s.logger).RegisterRoutes(r)
		transport.NewCategoryHandler(categoryService, s.logger).RegisterRoutes(r)
		transport.NewMaterialHandler(materialService, s.logger).RegisterRoutes(r)
	})

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	custommiddleware.RespondWithJSON(w, status, stats)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.objects != nil {
		s.objects.Close()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
