// Package main is the entry point for the WTFunko catalog server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand both to internal/server. All actual logic lives in the
// imported packages.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wtfunko/backend/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides the default for production deployments,
	// e.g. DB_PATH=/var/lib/wtfunko/prod.db
	dbPath := "data/wtfunko.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string, e.g.:
	//   JWT_SECRET=$(openssl rand -hex 32)
	// If unset we generate an ephemeral one so the server still runs in
	// development, but every restart invalidates all issued tokens.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		jwtSecret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set — using an ephemeral secret; tokens will not survive a restart")
	}

	// CORS_ORIGINS is a comma-separated allowlist; defaults to the local
	// storefront dev servers.
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if envOrigins := os.Getenv("CORS_ORIGINS"); envOrigins != "" {
		origins = origins[:0]
		for _, o := range strings.Split(envOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	cfg := server.Config{
		Port:           port,
		DBPath:         dbPath,
		JWTSecret:      jwtSecret,
		SeedFile:       os.Getenv("SEED_FILE"),
		AllowedOrigins: origins,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until shutdown (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
