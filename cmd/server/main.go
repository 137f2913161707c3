package main

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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/jwtauth"

	"github.com/contentshield/contentshield/pkg/contentshield"
	"github.com/contentshield/contentshield/pkg/contentshield/api"
	"github.com/contentshield/contentshield/pkg/contentshield/config"
)

func main() {
	// Load configuration from environment
	serverConfig, err := config.Load()
	if err != nil {
		slog.Error("failed to load server configuration", "err", err)
		os.Exit(1)
	}

	logger := httplog.NewLogger("contentshield", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  serverConfig.Environment == "development",
		JSON:     serverConfig.Environment == "production",
	})

	// Build service from configuration
	svc, err := serverConfig.BuildService(context.Background(), logger.Logger)
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	tokenAuth := jwtauth.New("HS256", []byte(serverConfig.JWTSecret), nil)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: buildRouter(svc, tokenAuth, logger, serverConfig),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("content shield server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.StorageType)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func buildRouter(svc contentshield.Service, tokenAuth *jwtauth.JWTAuth, logger *httplog.Logger, serverConfig *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if serverConfig.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public auth routes
	r.Mount("/api/v1/auth", api.NewAuthHandler(svc, tokenAuth).Routes())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Use(api.IdentityMiddleware)

		r.Mount("/api/v1/contents", api.NewContentHandler(svc).Routes())
		r.Mount("/api/v1/license-requests", api.NewLicenseHandler(svc).Routes())
		r.Mount("/api/v1/admin", api.NewAdminHandler(svc).Routes())
	})

	return r
}
