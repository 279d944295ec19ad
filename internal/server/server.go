// Package server wires the application together: it builds the
// dependency graph (database, blob store, services, handlers), defines
// the route table, and owns the HTTP server's lifecycle.
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

	"github.com/sakif/audio-repo/internal/auth"
	"github.com/sakif/audio-repo/internal/config"
	"github.com/sakif/audio-repo/internal/handler"
	"github.com/sakif/audio-repo/internal/metrics"
	"github.com/sakif/audio-repo/internal/middleware"
	sqliteRepo "github.com/sakif/audio-repo/internal/repository/sqlite"
	"github.com/sakif/audio-repo/internal/service"
	"github.com/sakif/audio-repo/internal/storage"
)

// Server holds the router and the resources it owns. The database is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB + storage.DiskStore
//	  → TokenService, YandexProvider
//	  → AuthService, UserService, AudioService
//	  → handlers → routes
//
// Services receive interfaces, handlers receive services; only this
// package sees the concrete types.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services and registers
// every route.
//
//	GET    /healthz                → liveness probe
//	GET    /metrics                → Prometheus metrics
//	GET    /auth/yandex/login      → redirect to Yandex
//	GET    /auth/yandex/callback   → complete login, return bearer token
//	GET    /api/users/me           → caller's record           (auth)
//	PATCH  /api/users/me           → change caller's username  (auth)
//	GET    /api/users/{id}         → record by id              (auth; self or superuser)
//	DELETE /api/users/{id}         → delete record             (auth; superuser)
//	POST   /api/audio              → upload audio file         (auth)
//	GET    /api/audio              → list caller's files       (auth)
func (s *Server) setupRoutes() error {
	collector := metrics.NewCollector()

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(collector.Middleware())

	blobs, err := storage.NewDiskStore(s.cfg.AudioDir)
	if err != nil {
		return fmt.Errorf("creating audio store: %w", err)
	}

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	yandex := auth.NewYandexProvider(
		s.cfg.YandexClientID,
		s.cfg.YandexClientSecret,
		s.cfg.YandexRedirectURL,
	)

	authSvc := service.NewAuthService(s.db.Users(), tokens, s.cfg.GrantSuperuserOnSignup, s.logger)
	userSvc := service.NewUserService(s.db.Users(), s.logger)
	audioSvc := service.NewAudioService(s.db.Audio(), blobs, s.logger)

	authHandler := handler.NewAuthHandler(yandex, authSvc, s.logger)
	userHandler := handler.NewUserHandler(userSvc, s.logger)
	audioHandler := handler.NewAudioHandler(audioSvc, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.router.Method(http.MethodGet, "/metrics", collector.Handler())

	s.router.Route("/auth/yandex", func(r chi.Router) {
		r.Get("/login", authHandler.HandleYandexLogin)
		r.Get("/callback", authHandler.HandleYandexCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser(authSvc))

		r.Get("/users/me", userHandler.HandleMe)
		r.Patch("/users/me", userHandler.HandleUpdateMe)
		r.Get("/users/{id}", userHandler.HandleGet)
		r.Delete("/users/{id}", userHandler.HandleDelete)

		r.Post("/audio", audioHandler.HandleUpload)
		r.Get("/audio", audioHandler.HandleList)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.String("audioDir", s.cfg.AudioDir),
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
