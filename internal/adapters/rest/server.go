package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"listing-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server - REST API сервиса объявлений.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает роутер; вынесен отдельно, чтобы тесты ходили в него через httptest.
func NewRouter(
	cfg ServerConfig,
	properties *PropertyHandler,
	calculators *CalculatorHandler,
	health *HealthHandler,
	auth *AuthMiddleware,
	baseLogger port.LoggerPort,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"Location", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", health.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/properties", properties.ListActive)
		r.Get("/properties/search", properties.Search)
		r.Get("/properties/browse", properties.Browse)
		r.Get("/properties/{propertyID}", properties.GetByID)
		r.Post("/properties/{propertyID}/leads", properties.RecordLead)
		r.Get("/emi", calculators.EMI)
		r.Get("/plans", calculators.Plans)

		// Маршруты владельца
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/properties", properties.Create)
			r.Patch("/properties/{propertyID}", properties.Update)
			r.Delete("/properties/{propertyID}", properties.Delete)
			r.Get("/me/properties", properties.ListMine)
		})
	})

	return r
}

func NewServer(cfg ServerConfig, handler http.Handler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start блокируется до остановки сервера.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
