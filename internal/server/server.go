// Package server wires the application together: database, services,
// handlers, routes, and the HTTP server lifecycle.
//
// This is the composition root — every dependency is constructed and
// connected here, then passed down explicitly. The DB handle and the token
// secret exist exactly once, owned by the Server; nothing reaches for
// globals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/case-runner/internal/auth"
	"github.com/sakif/case-runner/internal/dispatch"
	"github.com/sakif/case-runner/internal/handler"
	"github.com/sakif/case-runner/internal/middleware"
	sqliteRepo "github.com/sakif/case-runner/internal/repository/sqlite"
	"github.com/sakif/case-runner/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph:
//
//	sqlite.DB → repositories → TokenService/PasswordService
//	          → AuthService/CaseService/Dispatcher → handlers → routes
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// Protected routes (register through RequireAuth): logout, me, case create,
// case list. The by-id case routes are deliberately open — see DESIGN.md.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	caseService := service.NewCaseService(s.db, s.logger)
	dispatcher := dispatch.New(s.db, nil, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	caseHandler := handler.NewCaseHandler(caseService, dispatcher, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/healthchecker", handler.HandleHealthcheck)

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(requireAuth).Get("/auth/logout", authHandler.HandleLogout)
		r.With(requireAuth).Get("/users/me", authHandler.HandleMe)

		r.With(requireAuth).Post("/cases/", caseHandler.HandleCreate)
		r.With(requireAuth).Get("/cases", caseHandler.HandleList)

		r.Get("/cases/{id}", caseHandler.HandleGet)
		r.Patch("/cases/{id}", caseHandler.HandleUpdate)
		r.Delete("/cases/{id}", caseHandler.HandleDelete)
		r.Get("/cases/{id}/test", caseHandler.HandleDispatch)
	})

	return nil
}

// Handler exposes the configured router. Tests mount it on an httptest
// server instead of binding a real port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database without going through Start's shutdown path.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	// No WriteTimeout: a dispatch response takes as long as the target
	// takes, and the server must not cut it off.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
