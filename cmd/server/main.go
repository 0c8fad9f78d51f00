// Command server runs the waste-portal API.
//
// Configuration is environment-only:
//
//	PORT            listen port (default 8080)
//	DB_PATH         SQLite database file (default data/waste-portal.db)
//	JWT_SECRET      HMAC secret for session tokens (required, >= 16 chars)
//	REDIS_ADDR      optional Redis for the dashboard cache (e.g. localhost:6379)
//	ADMIN_USERNAME  bootstrap admin, created only on an empty database
//	ADMIN_EMAIL     bootstrap admin email
//	ADMIN_PASSWORD  bootstrap admin password
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/waste-portal/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
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

	dbPath := "data/waste-portal.db"
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

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET must be set; generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:          port,
		DBPath:        dbPath,
		JWTSecret:     jwtSecret,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
