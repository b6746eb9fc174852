package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/handler"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/server/middleware"
	"github.com/staffhub/staffhub/internal/service"
	"github.com/staffhub/staffhub/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	CORSOrigins     []string
	MaxBodySize     int64 // bytes
	SecureCookies   bool
	// AuthPerMinute bounds unauthenticated auth requests per client IP;
	// zero disables the limit.
	AuthPerMinute int
	Version       string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		RequestTimeout:  30 * time.Second,
		CORSOrigins:     []string{"*"},
		MaxBodySize:     1 << 20,
		SecureCookies:   true,
		AuthPerMinute:   20,
		Version:         "dev",
	}
}

// ConfigFrom derives the server settings from the application config.
func ConfigFrom(cfg *config.Config, version string) Config {
	return Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RequestTimeout:  cfg.Server.RequestTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		MaxBodySize:     cfg.Server.MaxBodySize,
		SecureCookies:   cfg.Auth.CookieSecure,
		AuthPerMinute:   cfg.RateLimit.AuthPerMinute,
		Version:         version,
	}
}

// Services bundles the collaborators the routes are served by.
type Services struct {
	Store     store.Store
	Gate      *service.Gate
	Auth      *service.AuthService
	Admins    *service.AdminService
	Users     *service.UserService
	Companies *service.CompanyService
	Teams     *service.TeamService
}

// Server is the top-level HTTP server for staffhub. It owns the Chi router
// and the store, which it closes on shutdown.
type Server struct {
	cfg        Config
	router     chi.Router
	svc        Services
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, svc Services, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.MaxBodySize(s.cfg.MaxBodySize))
	if s.cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(s.cfg.RequestTimeout))
	}

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/openapi.json", handler.NewOpenAPIHandler(s.cfg.Version, s.logger).ServeSpec)

	strict := middleware.Authenticate(s.svc.Gate, false, s.logger)
	detached := middleware.Authenticate(s.svc.Gate, true, s.logger)

	adminAuth := handler.NewAuthHandler(model.KindAdmin, s.svc.Auth, s.cfg.SecureCookies, s.logger)
	userAuth := handler.NewAuthHandler(model.KindUser, s.svc.Auth, s.cfg.SecureCookies, s.logger)
	admins := handler.NewAdminHandler(s.svc.Admins, s.logger)
	users := handler.NewUserHandler(s.svc.Users, s.logger)
	companies := handler.NewCompanyHandler(s.svc.Companies, s.logger)
	teams := handler.NewTeamHandler(s.svc.Teams, s.logger)

	r.Route("/api/v1", func(r chi.Router) {

		// Super-admin authentication
		r.Route("/auth/super-admins", func(r chi.Router) {
			r.Post("/register", admins.Register)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(s.cfg.AuthPerMinute))
				mountLoginFlow(r, adminAuth)
			})
			r.With(detached, middleware.RequireRole(model.RoleAdmin)).Post("/logout", adminAuth.Logout)
		})

		// User authentication
		r.Route("/auth/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(s.cfg.AuthPerMinute))
				mountLoginFlow(r, userAuth)
			})
			r.With(strict, middleware.RequireRole(model.RoleAdmin, model.RoleManager)).Post("/create", users.Create)
			r.With(strict, middleware.RequireRole(model.RoleManager, model.RoleEmployee)).Post("/logout", userAuth.Logout)
		})

		// Super-admin management
		r.Route("/super-admins", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(detached)
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Patch("/me", admins.UpdateMe)
				r.Post("/password", adminAuth.ChangePassword)
			})
			r.Group(func(r chi.Router) {
				r.Use(strict)
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Get("/", admins.List)
				r.Get("/{id}", admins.Get)
				r.Delete("/{id}", admins.Delete)
			})
		})

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Use(strict)
			// Any role may patch; the service restricts employees to themselves.
			r.Patch("/{id}", users.Update)
			r.With(middleware.RequireRole(model.RoleManager, model.RoleEmployee)).Post("/password", userAuth.ChangePassword)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
				r.Get("/", users.List)
				r.Get("/{id}", users.Get)
				r.Delete("/", users.Delete)
			})
		})

		// Companies
		r.Route("/companies", func(r chi.Router) {
			r.With(detached, middleware.RequireRole(model.RoleAdmin)).Post("/", companies.Create)
			r.Group(func(r chi.Router) {
				r.Use(strict)
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Get("/", companies.List)
				r.Get("/{id}", companies.Get)
				r.Patch("/{id}", companies.Update)
				r.Delete("/{id}", companies.Delete)
			})
		})

		// Teams
		r.Route("/teams", func(r chi.Router) {
			r.Use(strict)
			r.With(middleware.RequireRole(model.RoleAdmin, model.RoleManager)).Post("/", teams.Create)
			r.Get("/", teams.List)
			r.Get("/{id}", teams.Get)
		})
	})

	s.router = r
}

// mountLoginFlow registers the unauthenticated login and reset endpoints
// shared by both principal kinds.
func mountLoginFlow(r chi.Router, h *handler.AuthHandler) {
	r.Post("/login", h.Login)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Patch("/update-forgot-password", h.UpdateForgotPassword)
	r.Post("/refresh-token", h.RefreshToken)
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the store is
// reachable, or 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := map[string]string{"store": "ok"}

	if err := s.svc.Store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		checks["store"] = "unreachable"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.svc.Store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
