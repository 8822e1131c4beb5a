// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, services, handlers, and
// middleware are all wired together here, so main.go stays minimal and
// tests can assemble a server without running the binary.
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

	"github.com/wtfunko/backend/internal/auth"
	"github.com/wtfunko/backend/internal/handler"
	"github.com/wtfunko/backend/internal/middleware"
	sqliteRepo "github.com/wtfunko/backend/internal/repository/sqlite"
	"github.com/wtfunko/backend/internal/seed"
	"github.com/wtfunko/backend/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port           int
	DBPath         string
	JWTSecret      string
	SeedFile       string   // optional dataset loaded into an empty catalog
	AllowedOrigins []string // storefront origins allowed by CORS
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, stores, services,
// handlers, routes. Each layer receives only the interface it needs — the
// handlers never see the database, the services never see HTTP.
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

	if cfg.SeedFile != "" {
		if err := seed.Products(context.Background(), db.Products(), cfg.SeedFile, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding catalog: %w", err)
		}
	}

	return s, nil
}

// Handler exposes the router so tests can drive the server through
// httptest without opening a socket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and route handlers.
//
// Middleware runs in registration order: request ID and real IP first so
// the logger can use them, the logger before the recoverer so panics still
// produce a request line, CORS last so even error responses carry the
// headers the storefront needs.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	userService := service.NewUserService(s.db.Users(), passwords, tokens, s.logger)
	productService := service.NewProductService(s.db.Products(), s.logger)
	orderService := service.NewOrderService(s.db.Orders(), s.db.Users(), s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	productHandler := handler.NewProductHandler(productService, s.logger)
	orderHandler := handler.NewOrderHandler(orderService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/signup", userHandler.HandleSignup)
		r.Post("/login", userHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", userHandler.HandleMe)
		})

		r.Get("/users", userHandler.HandleFind)
		r.Get("/users/{username}", userHandler.HandleGet)
		r.Put("/users/{username}", userHandler.HandleUpdate)
		r.Delete("/users/{username}", userHandler.HandleDelete)
		r.Get("/users/{username}/orders", orderHandler.HandleListByUser)

		r.Get("/products", productHandler.HandleList)
		r.Get("/products/count", productHandler.HandleCount)
		r.Post("/products", productHandler.HandleCreate)
		r.Delete("/products", productHandler.HandleDeleteAll)
		r.Get("/products/{id}", productHandler.HandleGet)
		r.Put("/products/{id}", productHandler.HandleUpdate)
		r.Delete("/products/{id}", productHandler.HandleDelete)

		r.Post("/orders", orderHandler.HandleCreate)
		r.Delete("/orders", orderHandler.HandleDeleteAll)
		r.Get("/orders/{id}", orderHandler.HandleGet)
		r.Put("/orders/{id}", orderHandler.HandleUpdate)
		r.Delete("/orders/{id}", orderHandler.HandleDelete)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
