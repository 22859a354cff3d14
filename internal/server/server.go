package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/brk3/habitstats/internal/config"
	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg   *config.Config
	store storage.Store
	loc   *time.Location
	now   func() time.Time
	limit *userLimiter
}

type Option func(*Server)

// WithClock replaces the wall clock, mainly so tests can pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg *config.Config, store storage.Store, opts ...Option) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("server location: %w", err)
	}
	s := &Server{cfg: cfg, store: store, loc: loc, now: time.Now}
	if cfg.RateLimit.RPS > 0 {
		s.limit = newUserLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	for _, opt := range opts {
		opt(s)
	}
	logger.Info("Server configured", "auth_enabled", cfg.AuthEnabled, "timezone", loc.String())
	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", timezoneHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/version", s.getVersionInfo)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		}
		r.Use(s.userAwareMetricsMiddleware)
		if s.limit != nil {
			r.Use(s.rateLimitMiddleware(s.limit))
		}

		r.Route("/habits", func(r chi.Router) {
			r.Post("/", s.createHabit)
			r.Get("/", s.listHabits)
			r.Route("/{habit_id}", func(r chi.Router) {
				r.Get("/", s.getHabit)
				r.Put("/", s.updateHabit)
				r.Delete("/", s.deleteHabit)
				r.Get("/logs", s.listLogs)
				r.Put("/logs", s.putLog)
				r.Delete("/logs/{day}", s.deleteLog)
			})
		})

		r.Get("/logs/today", s.getTodayLogs)
		r.Get("/achievements", s.listAchievements)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", s.getOverview)
			r.Get("/habits", s.getAllAnalytics)
			r.Get("/habits/{habit_id}", s.getHabitAnalytics)
		})

		r.Get("/export", s.exportData)
	})

	return r
}
