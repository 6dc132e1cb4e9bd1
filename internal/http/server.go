package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "finman/internal/log"
	"finman/internal/middleware/ratelimit"
	"finman/internal/middleware/security"
	"finman/internal/middleware/trace"
	"finman/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Services groups the collaborators the handlers call.
type Services struct {
	Store        services.Store
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Goals        *services.GoalService
	Reports      *services.ReportService
}

// Config tunes the server. Zero values select defaults.
type Config struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Now stamps error bodies; nil means time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	svc     Services
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc Services) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		svc:     svc,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(clientIP),
		now:     now,
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(applog.Middleware(applog.Default(applog.ComponentHTTP)))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", trace.RequestIDHeader},
			ExposedHeaders:   []string{trace.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(s.limiter.Middleware(clientIP, s.rateLimited, http.MethodPost, http.MethodPut, http.MethodDelete))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, errMethodNotAllowed)
	})

	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", s.handleRegister)
			a.Post("/login", s.handleLogin)
			a.Post("/logout", s.handleLogout)
		})

		api.Group(func(p chi.Router) {
			p.Use(s.requireUser)

			p.Get("/categories", s.handleListCategories)
			p.Post("/categories", s.handleCreateCategory)
			p.Delete("/categories/{name}", s.handleDeleteCategory)

			p.Post("/transactions", s.handleCreateTransaction)
			p.Get("/transactions", s.handleListTransactions)
			p.Get("/transactions/{id}", s.handleGetTransaction)
			p.Put("/transactions/{id}", s.handleUpdateTransaction)
			p.Delete("/transactions/{id}", s.handleDeleteTransaction)

			p.Post("/goals", s.handleCreateGoal)
			p.Get("/goals", s.handleListGoals)
			p.Get("/goals/{id}", s.handleGetGoal)
			p.Put("/goals/{id}", s.handleUpdateGoal)
			p.Delete("/goals/{id}", s.handleDeleteGoal)

			p.Get("/reports/monthly/{year}/{month}", s.handleMonthlyReport)
			p.Get("/reports/yearly/{year}", s.handleYearlyReport)
		})
	})

	return r
}

// Shutdown stops background goroutines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
